package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/util"
)

// Hub routes events into per-user rooms. A room holds every live session of
// one user, so emitting to a room fans out to all of their devices.
type Hub struct {
	// rooms maps userID → that user's connected sessions.
	rooms map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	emit       chan *roomMsg
}

type roomMsg struct {
	userID uuid.UUID
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		emit:       make(chan *roomMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			room := h.rooms[client.userID]
			if room == nil {
				room = make(map[*Client]struct{})
				h.rooms[client.userID] = room
			}
			room[client] = struct{}{}
			util.Logger.Info("ws hub: session joined",
				zap.String("user_id", client.userID.String()),
				zap.Int("sessions", len(room)))

		case client := <-h.unregister:
			if room, ok := h.rooms[client.userID]; ok {
				if _, ok := room[client]; ok {
					h.drop(client)
					util.Logger.Info("ws hub: session left",
						zap.String("user_id", client.userID.String()),
						zap.Int("sessions", len(room)))
				}
			}

		case msg := <-h.emit:
			// No room means no live session: the event is dropped, not queued.
			for client := range h.rooms[msg.userID] {
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					h.drop(client)
				}
			}
		}
	}
}

// drop removes the client from its room and signals its pumps via done.
// The send channel is never closed: the client's ReadPump may still be
// dispatching an inbound frame that writes to it, and a send on a closed
// channel would panic the process. The abandoned buffer is collected with
// the client.
func (h *Hub) drop(client *Client) {
	room := h.rooms[client.userID]
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.userID)
	}
	close(client.done)
}

// EmitToUser sends an event into a user's room, reaching all of their
// connected sessions. Fire-and-forget.
func (h *Hub) EmitToUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		util.Logger.Error("ws hub: marshal error", zap.Error(err))
		return
	}
	h.emit <- &roomMsg{userID: userID, data: data}
}
