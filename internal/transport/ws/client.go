package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/njerikim/baraza/internal/util"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket session of one user.
type Client struct {
	hub        *Hub
	dispatcher *Dispatcher
	conn       *websocket.Conn
	userID     uuid.UUID

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, dispatcher *Dispatcher, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:        hub,
		dispatcher: dispatcher,
		conn:       conn,
		userID:     userID,
		send:       make(chan []byte, sendBufSize),
		done:       make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and hands them to the dispatcher.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				util.Logger.Info("ws: client disconnected", zap.String("user_id", c.userID.String()))
			} else {
				util.Logger.Warn("ws: read error", zap.String("user_id", c.userID.String()), zap.Error(err))
			}
			return
		}

		c.dispatcher.Dispatch(c, &event)
	}
}

// WritePump writes events from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				util.Logger.Warn("ws: write error", zap.String("user_id", c.userID.String()), zap.Error(err))
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				util.Logger.Warn("ws: ping error", zap.String("user_id", c.userID.String()), zap.Error(err))
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) sendEvent(eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	c.sendEvent(EventError, ErrorPayload{Code: code, Message: message})
}
