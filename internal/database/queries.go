package database

import (
	"slices"
	"time"
)

func (db *PgChatRepository) CreateMessage(username, content string) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (username, message, created_at) "+
			"VALUES ($1, $2, $3) RETURNING id, created_at",
		username,
		content,
		time.Now().UTC(),
	)

	m := Message{
		Username: username,
		Content:  content,
	}
	err := res.Scan(
		&m.Id,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgChatRepository) RecentMessages(limit int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, username, message, created_at FROM messages "+
			"ORDER BY created_at DESC, id DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.Id,
			&m.Username,
			&m.Content,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// query returns newest first, callers want chronological order
	slices.Reverse(messages)

	return messages, nil
}

func (db *PgChatRepository) IsBanned(username string) (bool, error) {
	row := db.conn.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM bans WHERE username = $1)",
		username,
	)

	var banned bool
	err := row.Scan(&banned)

	return banned, err
}

func (db *PgChatRepository) CreateBan(username string) error {
	_, err := db.conn.Exec(
		"INSERT INTO bans (username, created_at) VALUES ($1, $2) "+
			"ON CONFLICT (username) DO NOTHING",
		username,
		time.Now().UTC(),
	)

	return err
}
