package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types - Client → Server
const (
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
	EventMessageRead = "message_read"
	EventPing        = "ping"
)

// Event types - Server → Client
const (
	EventNewMessage          = "new_message"
	EventMessageStatusUpdate = "message_status_update"
	EventNewNotification     = "new_notification"
	EventPong                = "pong"
	EventError               = "error"
	// EventTyping and EventStopTyping are relayed back out under the same
	// names they arrive with.
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type TypingPayload struct {
	RecipientID uuid.UUID `json:"recipient_id"`
}

type MessageReadPayload struct {
	MessageID int64 `json:"message_id"`
}

// --- Server → Client payloads ---

type TypingNotice struct {
	SenderID uuid.UUID `json:"sender_id"`
}

type MessageStatusPayload struct {
	MessageID int64 `json:"message_id"`
	Read      bool  `json:"read"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
