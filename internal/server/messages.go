package server

import (
	"time"

	"github.com/mkozlov/chatterbox/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is the envelope for every client-to-server event. Exactly
// one of the payload pointers is expected to be set.
type ClientMessage struct {
	BaseMessage
	CheckUsername *CheckUsername `json:"check_username,omitempty"`
	Join          *Join          `json:"join,omitempty"`
	Publish       *Publish       `json:"publish,omitempty"`
	Typing        *Typing        `json:"typing,omitempty"`
	Reaction      *Reaction      `json:"reaction,omitempty"`
	Announce      *Announce      `json:"announce,omitempty"`
	Kick          *Target        `json:"kick,omitempty"`
	Mute          *Target        `json:"mute,omitempty"`
	Unmute        *Target        `json:"unmute,omitempty"`
	Ban           *Target        `json:"ban,omitempty"`
	GetAdminData  *AdminDataReq  `json:"get_admin_data,omitempty"`
	client        *Client        `json:"-"`
}

type CheckUsername struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

type Join struct {
	Username   string `json:"username"`
	AdminToken string `json:"admin_token,omitempty"`
}

type Publish struct {
	Content string `json:"content"`
}

type Typing struct {
	State bool `json:"state"`
}

type Reaction struct {
	Emoji string `json:"emoji"`
}

type Announce struct {
	Content string `json:"content"`
}

type Target struct {
	ConnectionId string `json:"connection_id"`
}

type AdminDataReq struct{}

// ServerMessage is the envelope for every server-to-client event.
type ServerMessage struct {
	BaseMessage
	Response   *CheckUsernameResult `json:"response,omitempty"`
	Backlog    *Backlog             `json:"backlog,omitempty"`
	Message    *types.Message       `json:"message,omitempty"`
	System     *SystemMessage       `json:"system,omitempty"`
	Status     *Status              `json:"status,omitempty"`
	Typing     *TypingEvent         `json:"typing,omitempty"`
	Presence   *Presence            `json:"presence,omitempty"`
	Reaction   *ReactionEvent       `json:"reaction,omitempty"`
	AdminData  []types.AdminEntry   `json:"admin_data,omitempty"`
	Kicked     bool                 `json:"kicked,omitempty"`
	Banned     bool                 `json:"banned,omitempty"`
	Muted      *bool                `json:"muted,omitempty"`
	SkipClient *Client              `json:"-"`
}

type CheckUsernameResult struct {
	Available  bool   `json:"available"`
	Message    string `json:"message,omitempty"`
	AdminToken string `json:"admin_token,omitempty"`
}

// Backlog is the message history replayed to a newly joined participant,
// oldest first. The wrapper keeps an empty history distinguishable from a
// missing field on the wire.
type Backlog struct {
	Messages []types.Message `json:"messages"`
}

type SystemMessage struct {
	Content string `json:"message"`
}

type Status struct {
	Content string `json:"message"`
}

type TypingEvent struct {
	User  string `json:"user"`
	State bool   `json:"state"`
}

// Presence is the full replacement list of online usernames, not a diff.
type Presence struct {
	Users []string `json:"users"`
}

type ReactionEvent struct {
	Emoji string `json:"emoji"`
}

func newCheckUsernameReply(id int, res *CheckUsernameResult) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: res,
	}
}

func newBacklogMessage(messages []types.Message) *ServerMessage {
	if messages == nil {
		messages = []types.Message{}
	}
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Backlog: &Backlog{Messages: messages},
	}
}

func newChatMessage(user, content string, timestamp time.Time) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Message: &types.Message{
			User:      user,
			Content:   content,
			Timestamp: timestamp,
		},
	}
}

func newSystemMessage(content string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		System: &SystemMessage{Content: content},
	}
}

func newStatusMessage(content string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Status: &Status{Content: content},
	}
}

func newTypingMessage(user string, state bool) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Typing: &TypingEvent{User: user, State: state},
	}
}

func newPresenceMessage(users []string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Presence: &Presence{Users: users},
	}
}

func newReactionMessage(emoji string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Reaction: &ReactionEvent{Emoji: emoji},
	}
}

func newAdminDataMessage(entries []types.AdminEntry) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		AdminData: entries,
	}
}

func newKickedMessage() *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Kicked: true,
	}
}

func newBannedMessage() *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Banned: true,
	}
}

func newMutedMessage(muted bool) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Muted: &muted,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
