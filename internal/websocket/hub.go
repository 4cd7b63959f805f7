// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package websocket

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/metrics"
	"github.com/tomtom215/moviebooks/internal/models"
)

const (
	MessageTypeNotification = "notification"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is the frame written to clients.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type directMessage struct {
	userID string
	only   *Client // nil targets every connection of userID
	msg    Message
}

// Hub routes messages to the connections of one user.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	direct     chan directMessage
	running    atomic.Bool
	count      atomic.Int64
}

// NewHub returns a hub; call Serve to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directMessage, 256),
	}
}

// Serve runs the hub loop until ctx is canceled, then closes every client.
// It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return nil
	}
	defer h.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			closed := h.closeAll()
			logging.Info().
				Str("component", "websocket-hub").
				Int("clients_closed", closed).
				Msg("WebSocket hub stopped")
			return ctx.Err()

		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.count.Add(1)
			metrics.WebSocketConnections.Inc()
			logging.Debug().Str("user_id", c.userID).Int64("total_clients", h.count.Load()).Msg("WebSocket client connected")

		case c := <-h.unregister:
			if h.remove(c) {
				logging.Debug().Str("user_id", c.userID).Int64("total_clients", h.count.Load()).Msg("WebSocket client disconnected")
			}

		case dm := <-h.direct:
			h.deliver(dm)
		}
	}
}

func (h *Hub) String() string {
	return "websocket-hub"
}

// remove drops c and closes its send channel. It reports whether c was registered.
func (h *Hub) remove(c *Client) bool {
	set, ok := h.clients[c.userID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	h.count.Add(-1)
	metrics.WebSocketConnections.Dec()
	return true
}

func (h *Hub) deliver(dm directMessage) {
	for c := range h.clients[dm.userID] {
		if dm.only != nil && dm.only != c {
			continue
		}
		select {
		case c.send <- dm.msg:
			metrics.WebSocketMessagesSent.Inc()
		default:
			logging.Warn().Str("user_id", dm.userID).Uint64("client_id", c.id).Msg("WebSocket client too slow, dropping")
			h.remove(c)
		}
	}
}

func (h *Hub) closeAll() int {
	n := 0
	for _, set := range h.clients {
		for c := range set {
			h.remove(c)
			n++
		}
	}
	return n
}

// Register adds a client. It returns false when the hub is not running.
func (h *Hub) Register(c *Client) bool {
	if !h.running.Load() {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-time.After(time.Second):
		return false
	}
}

// Unregister removes a client; safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	if !h.running.Load() {
		return
	}
	select {
	case h.unregister <- c:
	case <-time.After(time.Second):
	}
}

// SendToUser queues a message for every connection of userID. The call
// never blocks; when the queue is full the message is dropped.
func (h *Hub) SendToUser(userID, messageType string, data any) {
	h.enqueue(directMessage{
		userID: userID,
		msg:    Message{Type: messageType, Data: data, Timestamp: time.Now().UTC()},
	})
}

func (h *Hub) sendToClient(c *Client, messageType string) {
	h.enqueue(directMessage{
		userID: c.userID,
		only:   c,
		msg:    Message{Type: messageType, Timestamp: time.Now().UTC()},
	})
}

func (h *Hub) enqueue(dm directMessage) {
	select {
	case h.direct <- dm:
	default:
		logging.Warn().Str("user_id", dm.userID).Str("message_type", dm.msg.Type).Msg("WebSocket queue full, dropping message")
	}
}

// SendNotification delivers a stored notification to its recipient.
func (h *Hub) SendNotification(userID string, n *models.NotificationView) {
	h.SendToUser(userID, MessageTypeNotification, n)
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// IsRunning reports whether Serve is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
