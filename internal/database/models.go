package database

import "time"

type Message struct {
	Id        int
	Username  string
	Content   string
	CreatedAt time.Time
}

type Ban struct {
	Id        int
	Username  string
	CreatedAt time.Time
}
