package notifications

import "time"

// MessageType identifies what a pushed message carries.
type MessageType string

const (
	TypeStatusChanged MessageType = "accreditation.status_changed"
	TypePing          MessageType = "ping"
)

// WebSocketMessage is the envelope pushed to connected clients.
type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}
