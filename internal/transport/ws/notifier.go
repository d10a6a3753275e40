package ws

import (
	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/domain"
	"github.com/njerikim/baraza/internal/util"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyNewMessage fans the message out to both participants' rooms.
func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventNewMessage, msg)
	if err != nil {
		util.Logger.Error("ws notifier: marshal error", zap.Error(err))
		return
	}
	n.hub.EmitToUser(msg.SenderID, evt)
	n.hub.EmitToUser(msg.RecipientID, evt)
}

// NotifyMessageRead sends the read receipt to the sender's room only.
func (n *HubNotifier) NotifyMessageRead(msg *domain.Message) {
	evt, err := NewEvent(EventMessageStatusUpdate, MessageStatusPayload{
		MessageID: msg.ID,
		Read:      msg.Read,
	})
	if err != nil {
		util.Logger.Error("ws notifier: marshal error", zap.Error(err))
		return
	}
	n.hub.EmitToUser(msg.SenderID, evt)
}

// NotifyNotification pushes a freshly persisted notification to its owner.
func (n *HubNotifier) NotifyNotification(notification *domain.Notification) {
	evt, err := NewEvent(EventNewNotification, notification)
	if err != nil {
		util.Logger.Error("ws notifier: marshal error", zap.Error(err))
		return
	}
	n.hub.EmitToUser(notification.UserID, evt)
}
