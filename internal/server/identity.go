package server

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/mkozlov/chatterbox/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// normalizeUsername produces the key used for uniqueness and ban checks.
func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (cs *ChatServer) usernameOnline(name string) bool {
	for _, c := range cs.sessions {
		if c.participant.Username == name {
			return true
		}
	}
	return false
}

// handleCheckUsername validates a requested display name and answers on the
// requesting connection, correlated by the message id. This check and a
// later join are deliberately not atomic with respect to each other.
func (cs *ChatServer) handleCheckUsername(c *Client, msg *ClientMessage) {
	reply := func(res *CheckUsernameResult) {
		c.queueMessage(newCheckUsernameReply(msg.Id, res))
	}

	username := normalizeUsername(msg.CheckUsername.Username)
	if username == "" {
		reply(&CheckUsernameResult{Message: "invalid username"})
		return
	}

	banned, err := cs.db.IsBanned(username)
	if err != nil {
		cs.log.Println("IsBanned:", err)
		reply(&CheckUsernameResult{Message: "server error"})
		return
	}
	if banned {
		reply(&CheckUsernameResult{Message: "you are banned from this chat"})
		return
	}

	if username == adminUsername {
		if !verifyPassword(cs.adminPasswordHash, msg.CheckUsername.Password) {
			reply(&CheckUsernameResult{Message: "invalid admin password"})
			return
		}

		token, err := cs.mintAdminToken()
		if err != nil {
			cs.log.Println("mintAdminToken:", err)
			reply(&CheckUsernameResult{Message: "server error"})
			return
		}

		reply(&CheckUsernameResult{Available: true, AdminToken: token})
		return
	}

	if isReservedUsername(username) {
		reply(&CheckUsernameResult{Message: "this username is reserved"})
		return
	}

	if cs.usernameOnline(username) {
		reply(&CheckUsernameResult{Message: "username already taken"})
		return
	}

	reply(&CheckUsernameResult{Available: true})
}

// mintAdminToken creates a signed bearer token and records it in the
// process-wide set of valid admin tokens. Tokens are never expired or
// revoked before the process restarts.
func (cs *ChatServer) mintAdminToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  uuid.NewString(),
		"role": string(types.RoleAdmin),
		"iat":  Now().Unix(),
	})

	signed, err := token.SignedString(cs.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	cs.adminTokens[signed] = struct{}{}
	return signed, nil
}

func (cs *ChatServer) validAdminToken(token string) bool {
	if token == "" {
		return false
	}

	_, ok := cs.adminTokens[token]
	return ok
}

func verifyPassword(passwdHash []byte, passwd string) bool {
	err := bcrypt.CompareHashAndPassword(passwdHash, []byte(passwd))
	return err == nil
}
