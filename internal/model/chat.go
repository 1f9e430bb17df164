package model

import "time"

// ChatSession groups assistant messages.
type ChatSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Message types.
const (
	MessageUser      = "user"
	MessageAssistant = "assistant"
)

// ChatMessage is a single turn of an assistant conversation.
type ChatMessage struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	Urgency     *string   `json:"urgency,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
