package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"clouddrive/internal/models"
	"clouddrive/pkg/logger"
)

// Hub fans change events out to the live connections of their owner. Every
// user has one room keyed by user id; all map mutations happen on the Run
// goroutine.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

type Message struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log.WithField("component", "websocket_hub"),
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.sendToRoom(message.UserID, message)

		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	if h.rooms[client.UserID] == nil {
		h.rooms[client.UserID] = make(map[*Client]bool)
	}
	h.rooms[client.UserID][client] = true
	h.mutex.Unlock()

	h.logger.WithUserID(client.UserID).Debug("Client registered")

	h.sendToClient(client, &Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: getCurrentTimestamp(),
		Data:      map[string]interface{}{"message": "Connected successfully"},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if room, exists := h.rooms[client.UserID]; exists {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.UserID)
		}
	}

	h.logger.WithUserID(client.UserID).Debug("Client unregistered")
}

func (h *Hub) sendToRoom(userID string, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode event")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.rooms[userID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it rather than stall every other room.
			h.removeLocked(client)
		}
	}
}

func (h *Hub) sendToClient(client *Client, message *Message) {
	data, _ := json.Marshal(message)

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.removeLocked(client)
	}
}

func (h *Hub) shutdown() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// Publish queues an event for the owner's connections. It never blocks on
// a full queue; the event is dropped and logged instead.
func (h *Hub) Publish(ctx context.Context, event *models.Event) {
	if event == nil || event.UserID == "" {
		return
	}

	message := &Message{
		Type:      event.Type,
		UserID:    event.UserID,
		Timestamp: event.Timestamp.Unix(),
		Data:      event.Data,
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.WithUserID(event.UserID).WithField("event", event.Type).Warn("Event queue full, dropping event")
	}
}

// ClientCount reports the live connections of userID.
func (h *Hub) ClientCount(userID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[userID])
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
