package server

import (
	"slices"

	"github.com/mkozlov/chatterbox/internal/database"
	"github.com/mkozlov/chatterbox/internal/types"
)

// admit inserts a participant record for the connection. Name collisions
// are not re-checked here: two clients racing past the availability check
// both get admitted, each under the same display name.
func (cs *ChatServer) admit(c *Client, username string, role types.Role) *types.Participant {
	p := &types.Participant{
		ConnectionId: c.id,
		Username:     username,
		Role:         role,
		JoinedAt:     Now(),
	}

	c.participant = p
	cs.sessions[c.id] = c
	cs.joinOrder = append(cs.joinOrder, c.id)
	cs.stats.Incr(statParticipants)

	return p
}

// removeSession deletes the participant record and the connection's
// mute-set membership. The mute entry is cleared even for a connection
// that was pre-muted and never joined. Idempotent: returns false if the
// connection never joined.
func (cs *ChatServer) removeSession(c *Client) bool {
	delete(cs.muted, c.id)

	if _, ok := cs.sessions[c.id]; !ok {
		return false
	}

	delete(cs.sessions, c.id)

	for i, id := range cs.joinOrder {
		if id == c.id {
			cs.joinOrder = slices.Delete(cs.joinOrder, i, i+1)
			break
		}
	}

	cs.stats.Decr(statParticipants)
	return true
}

// listUsernames snapshots the online display names in join order.
func (cs *ChatServer) listUsernames() []string {
	users := make([]string, 0, len(cs.joinOrder))
	for _, id := range cs.joinOrder {
		users = append(users, cs.sessions[id].participant.Username)
	}
	return users
}

func (cs *ChatServer) isAdmin(connectionId string) bool {
	c, ok := cs.sessions[connectionId]
	return ok && c.participant.Role == types.RoleAdmin
}

func (cs *ChatServer) isMuted(connectionId string) bool {
	_, ok := cs.muted[connectionId]
	return ok
}

func (cs *ChatServer) handleJoin(c *Client, msg *ClientMessage) {
	if c.participant != nil {
		cs.log.Printf("connection %q already joined as %q", c.id, c.participant.Username)
		return
	}

	username := normalizeUsername(msg.Join.Username)
	if username == "" {
		return
	}

	// authoritative ban check; the availability check may be stale by now
	banned, err := cs.db.IsBanned(username)
	if err != nil {
		cs.log.Println("IsBanned:", err)
		return
	}
	if banned {
		cs.log.Printf("rejected join for banned name %q", username)
		return
	}

	role := types.RoleUser
	if username == adminUsername && cs.validAdminToken(msg.Join.AdminToken) {
		role = types.RoleAdmin
	}

	cs.admit(c, username, role)
	cs.log.Printf("%q joined as %q (%s)", c.id, username, role)

	backlog, err := cs.db.RecentMessages(backlogLimit)
	if err != nil {
		cs.log.Println("RecentMessages:", err)
		return
	}

	c.queueMessage(newBacklogMessage(backlogToWire(backlog)))

	status := newStatusMessage(username + " joined the chat")
	status.SkipClient = c
	cs.broadcast(status)

	cs.broadcast(newPresenceMessage(cs.listUsernames()))
	cs.pushAdminData()
}

func backlogToWire(messages []database.Message) []types.Message {
	wire := make([]types.Message, len(messages))
	for i, m := range messages {
		wire[i] = types.Message{
			User:      m.Username,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		}
	}
	return wire
}
