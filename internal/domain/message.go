package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users. Rows are append-only:
// after creation only the Read flag ever changes. IDs come from a BIGSERIAL
// sequence, so higher id means later insertion within a conversation.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
	MediaURL    *string   `json:"media_url,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields
	SenderUsername  string  `json:"sender_username,omitempty"`
	SenderAvatarURL *string `json:"sender_avatar_url,omitempty"`
}

// InboxEntry is one row of the conversations view: the counterpart and the
// most recent message exchanged with them, in either direction.
type InboxEntry struct {
	Counterpart User    `json:"counterpart"`
	LastMessage Message `json:"last_message"`
}
