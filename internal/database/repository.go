package database

// ChatRepository is the durable side of the chat room: an append-only
// message log and an append-only set of banned usernames.
type ChatRepository interface {
	Ping() error
	CreateMessage(username, content string) (Message, error)
	RecentMessages(limit int) ([]Message, error)
	IsBanned(username string) (bool, error)
	CreateBan(username string) error
}
