// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Notification messages
	MessageNotification      MessageType = "notification"
	MessageNotificationCount MessageType = "notification_count"

	// Meeting messages
	MessageMeetingCreated MessageType = "meeting_created"
	MessageMeetingDeleted MessageType = "meeting_deleted"
	MessageTimeSelected   MessageType = "time_selected"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Hub maintains the set of active clients and routes direct messages. A user
// can hold several connections (tabs); all of them receive each message.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	directMessage chan *DirectMessage

	mu sync.RWMutex
}

// DirectMessage represents a message to be sent to a specific user
type DirectMessage struct {
	UserID  string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		userClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		directMessage: make(chan *DirectMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case dm := <-h.directMessage:
			h.sendToUser(dm)

		case <-pingTicker.C:
			h.pingClients()
		}
	}
}

// SendToUser marshals a message and queues it for every connection the user
// holds. Drops silently when the user is offline.
func (h *Hub) SendToUser(userID string, msgType MessageType, payload map[string]interface{}) {
	msg := Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s message: %v", msgType, err)
		return
	}

	select {
	case h.directMessage <- &DirectMessage{UserID: userID, Message: data}:
	default:
		log.Printf("[Hub] Direct message queue full, dropping %s for user %s", msgType, userID)
	}
}

// GetConnectedClientsCount returns the number of open connections.
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	log.Printf("[Hub] ✅ Client registered: user=%s, id=%s, total_clients=%d",
		client.UserID, client.ID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		if clients, ok := h.userClients[client.UserID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.userClients, client.UserID)
			}
		}

		close(client.Send)
		log.Printf("[Hub] ❌ Client disconnected: user=%s, id=%s, total_clients=%d",
			client.UserID, client.ID, len(h.clients))
	}
}

func (h *Hub) sendToUser(dm *DirectMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.userClients[dm.UserID]
	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.Send <- dm.Message:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      MessagePing,
		Timestamp: time.Now(),
	}
	data, _ := json.Marshal(msg)

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}
