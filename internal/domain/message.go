package domain

import "time"

// Message is an inbox item between two users. Deleted is a soft-delete flag.
type Message struct {
	ID        string
	Sender    string
	Receiver  string
	Subject   *string
	Body      string
	Timestamp time.Time
	IsRead    bool
	Deleted   bool
}
