package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/njerikim/baraza/internal/domain"
	"github.com/njerikim/baraza/internal/service"
)

// MessageReader is the slice of the message service the dispatcher needs.
type MessageReader interface {
	MarkRead(ctx context.Context, messageID int64, userID uuid.UUID) (*domain.Message, error)
}

type handlerFunc func(sender *Client, payload json.RawMessage)

// Dispatcher maps incoming event names to handlers. Each handler is a
// function of (session identity, payload); transport plumbing stays in
// Client and Hub.
type Dispatcher struct {
	hub      *Hub
	messages MessageReader
	handlers map[string]handlerFunc
}

func NewDispatcher(hub *Hub, messages MessageReader) *Dispatcher {
	d := &Dispatcher{
		hub:      hub,
		messages: messages,
	}
	d.handlers = map[string]handlerFunc{
		EventTyping:      d.relayTyping(EventTyping),
		EventStopTyping:  d.relayTyping(EventStopTyping),
		EventMessageRead: d.handleMessageRead,
		EventPing:        d.handlePing,
	}
	return d
}

func (d *Dispatcher) Dispatch(sender *Client, event *Event) {
	handler, ok := d.handlers[event.Type]
	if !ok {
		sender.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
		return
	}
	handler(sender, event.Payload)
}

// relayTyping forwards typing/stop_typing to the recipient's room verbatim.
// Purely advisory: no persistence, no ordering guarantee, a stale indicator
// is resolved by whichever event lands last.
func (d *Dispatcher) relayTyping(eventType string) handlerFunc {
	return func(sender *Client, payload json.RawMessage) {
		var p TypingPayload
		if err := json.Unmarshal(payload, &p); err != nil || p.RecipientID == uuid.Nil {
			sender.sendError("INVALID_PAYLOAD", "recipient_id is required")
			return
		}

		evt, err := NewEvent(eventType, TypingNotice{SenderID: sender.userID})
		if err != nil {
			return
		}
		d.hub.EmitToUser(p.RecipientID, evt)
	}
}

// handleMessageRead marks the message read on behalf of the session's user;
// the service emits the read receipt to the sender's room.
func (d *Dispatcher) handleMessageRead(sender *Client, payload json.RawMessage) {
	var p MessageReadPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.MessageID == 0 {
		sender.sendError("INVALID_PAYLOAD", "message_id is required")
		return
	}

	_, err := d.messages.MarkRead(context.Background(), p.MessageID, sender.userID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMessageNotFound):
		sender.sendError("NOT_FOUND", "message not found")
	case errors.Is(err, service.ErrNotRecipient):
		sender.sendError("FORBIDDEN", "only the recipient can mark a message as read")
	default:
		sender.sendError("INTERNAL", "could not mark message as read")
	}
}

func (d *Dispatcher) handlePing(sender *Client, _ json.RawMessage) {
	sender.sendEvent(EventPong, nil)
}
