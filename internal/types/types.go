package types

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Participant is an online connection's chat identity for the duration of
// that connection. Username and Role are set once at join time.
type Participant struct {
	ConnectionId string    `json:"connection_id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
}

type Message struct {
	User      string    `json:"user"`
	Content   string    `json:"message"`
	Timestamp time.Time `json:"time"`
}

// AdminEntry is one row of the moderation dashboard snapshot.
type AdminEntry struct {
	ConnectionId string    `json:"connection_id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
	Muted        bool      `json:"muted"`
}
