package service

import (
	"github.com/njerikim/baraza/internal/domain"
)

// Notifier broadcasts real-time events to connected clients. Delivery is
// fire-and-forget: a user with no live session simply misses the event.
type Notifier interface {
	// NotifyNewMessage reaches both the sender's and the recipient's rooms.
	NotifyNewMessage(msg *domain.Message)
	// NotifyMessageRead reaches the sender's room only (read receipt).
	NotifyMessageRead(msg *domain.Message)
	// NotifyNotification reaches the owning user's room.
	NotifyNotification(n *domain.Notification)
}
