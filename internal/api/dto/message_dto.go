package dto

import "time"

// SendMessageRequest payload.
type SendMessageRequest struct {
	Receiver string  `json:"receiver"`
	Subject  *string `json:"subject"`
	Message  string  `json:"message"`
}

// MessageResponse is one inbox entry.
type MessageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Subject   *string   `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}
