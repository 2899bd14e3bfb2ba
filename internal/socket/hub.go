// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"equipment-dispatch-api-server/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait bounds a single write to a slow client.
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a client may lag behind before it is dropped.
	sendBuffer = 16
)

// Message is the envelope pushed to every connected client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the live WebSocket clients and fans dispatch events out to them.
// Broadcast never waits on a client.
type Hub struct {
	// clients is keyed by a per-connection id.
	clients map[string]*client
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger.Named("socket"),
	}
}

// Register adds a client and starts its writer. A client already registered under
// clientID is replaced.
func (h *Hub) Register(clientID string, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if old, ok := h.clients[clientID]; ok {
		close(old.send)
	}
	h.clients[clientID] = c
	h.mu.Unlock()

	go h.writePump(clientID, c)
	h.logger.Debug("websocket client registered", zap.String("client_id", clientID))
}

// Unregister removes a client and stops its writer.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		delete(h.clients, clientID)
		close(c.send)
		h.logger.Debug("websocket client unregistered", zap.String("client_id", clientID))
	}
}

// Count is the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues message for every client. A client whose buffer is full is
// closed and dropped.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("dropping slow websocket client", zap.String("client_id", id))
			delete(h.clients, id)
			close(c.send)
			c.conn.Close()
		}
	}
}

// drop removes c after a failed write, unless it was already removed or replaced.
func (h *Hub) drop(clientID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[clientID]; ok && cur == c {
		delete(h.clients, clientID)
		close(c.send)
	}
}

func (h *Hub) writePump(clientID string, c *client) {
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn("dropping websocket client", zap.String("client_id", clientID), zap.Error(err))
			c.conn.Close()
			h.drop(clientID, c)
			return
		}
	}
}

// NotifyDispatch pushes an accepted dispatch to all clients.
func (h *Hub) NotifyDispatch(event models.DispatchEvent) {
	payload, err := json.Marshal(Message{Type: "dispatch", Data: event})
	if err != nil {
		h.logger.Warn("failed to encode dispatch notification", zap.Error(err))
		return
	}
	h.Broadcast(payload)
}
