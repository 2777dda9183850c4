package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matcha/internal/metrics"
	"github.com/thereayou/matcha/pkg/logger"
)

// EventType names a frame on the wire.
type EventType string

const (
	// Клиент -> сервер
	TypeSendMessage  EventType = "send_message"
	TypeReadMessages EventType = "read_messages"
	TypePing         EventType = "ping"

	// Сервер -> клиент
	TypeMessage      EventType = "message"
	TypeNotification EventType = "notification"
	TypeUnreadCount  EventType = "unread_count"
	TypeError        EventType = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Type      EventType       `json:"type"`
	Ref       string          `json:"ref,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub is the connection registry: user id -> live sessions of that user.
// It is process-local and starts empty; events for users connected to
// another process are not seen here.
type Hub struct {
	// Один пользователь может иметь несколько соединений (по одному на устройство)
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	mu      sync.RWMutex
	stopped bool
}

func NewHub() *Hub {
	return &Hub{
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
	}
}

// Join registers a session. After Stop it closes the client instead.
func (h *Hub) Join(client *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		client.Close()
		return
	}
	clients, ok := h.userClients[client.UserID]
	if !ok {
		clients = make(map[uuid.UUID]*Client)
		h.userClients[client.UserID] = clients
	}
	clients[client.ID] = client
	sessions := len(clients)
	h.mu.Unlock()

	metrics.SessionsActive.Inc()
	logger.Info(context.Background(), "session joined",
		logger.Stringer("user_id", client.UserID),
		logger.Stringer("session_id", client.ID),
		logger.Int("user_sessions", sessions),
	)
}

// Leave removes a session and returns how many sessions the user still has.
// Leaving twice is harmless.
func (h *Hub) Leave(client *Client) int {
	h.mu.Lock()
	clients, ok := h.userClients[client.UserID]
	if !ok {
		h.mu.Unlock()
		return 0
	}
	_, present := clients[client.ID]
	delete(clients, client.ID)
	remaining := len(clients)
	if remaining == 0 {
		delete(h.userClients, client.UserID)
	}
	h.mu.Unlock()

	client.Close()
	if present {
		metrics.SessionsActive.Dec()
		logger.Info(context.Background(), "session left",
			logger.Stringer("user_id", client.UserID),
			logger.Stringer("session_id", client.ID),
			logger.Int("user_sessions", remaining),
		)
	}
	return remaining
}

// EmitToUser queues event to every live session of userID and returns the
// number of sessions reached. Zero sessions is a normal outcome: nothing is
// stored for later delivery.
func (h *Hub) EmitToUser(userID uuid.UUID, event EventType, payload interface{}) int {
	clients := h.sessionsOf(userID)
	if len(clients) == 0 {
		return 0
	}

	frame, err := encodeFrame(event, "", payload)
	if err != nil {
		logger.Error(context.Background(), "encode frame failed",
			logger.String("event", string(event)),
			logger.ErrorField(err),
		)
		return 0
	}

	delivered := 0
	for _, client := range clients {
		if client.Enqueue(frame) {
			delivered++
			continue
		}
		metrics.FanoutDropped.WithLabelValues(string(event)).Inc()
		logger.Warn(context.Background(), "session queue full, frame dropped",
			logger.Stringer("session_id", client.ID),
			logger.String("event", string(event)),
		)
	}
	metrics.FanoutDeliveries.WithLabelValues(string(event)).Add(float64(delivered))
	return delivered
}

// sessionsOf snapshots the sessions under the read lock so that queueing
// happens outside it.
func (h *Hub) sessionsOf(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.userClients[userID]
	if len(clients) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(clients))
	for _, client := range clients {
		out = append(out, client)
	}
	return out
}

func (h *Hub) SessionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// OnlineUsers returns users holding at least one session.
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

// Stop closes every session and refuses new ones.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	var all []*Client
	for _, clients := range h.userClients {
		for _, client := range clients {
			all = append(all, client)
		}
	}
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.mu.Unlock()

	for _, client := range all {
		client.Close()
	}
	metrics.SessionsActive.Sub(float64(len(all)))
}

func encodeFrame(event EventType, ref string, payload interface{}) ([]byte, error) {
	msg := Envelope{
		Type:      event,
		Ref:       ref,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = data
	}
	return json.Marshal(msg)
}
