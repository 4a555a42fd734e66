package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Hollow-Pines/server/internal/interfaces"
	"Hollow-Pines/server/internal/storage"
)

// Client represents one user's WebSocket connection
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

// Hub routes outbound story messages to per-user WebSocket connections. One
// connection per user; a reconnect replaces the previous one. It implements
// the engine's Emitter contract: a send to an absent or backed-up user
// fails, which the engine treats as a retryable transport error.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	history    *storage.RedisStore // optional, nil when Redis is absent
	mu         sync.RWMutex
}

// NewHub creates a message hub. history may be nil.
func NewHub(history *storage.RedisStore) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 100),
		unregister: make(chan *Client, 100),
		history:    history,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient adds a client, replacing any existing connection for the
// same user.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	old := h.clients[client.UserID]
	h.clients[client.UserID] = client
	if old != nil {
		// Closing under the write lock keeps Send, which holds the read
		// lock across its channel write, off the dying channel.
		close(old.Send)
	}
	h.mu.Unlock()

	if old != nil {
		old.Close()
	}
	log.Printf("[Hub] Client connected: %s", client.UserID)

	go client.writePump()
}

// unregisterClient removes a client unless a newer connection already
// replaced it.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.UserID]; ok && current == client {
		delete(h.clients, client.UserID)
		close(client.Send)
		log.Printf("[Hub] Client disconnected: %s", client.UserID)
	}
}

// Send delivers one message to the given user. Implements interfaces.Emitter.
func (h *Hub) Send(ctx context.Context, userID string, msg interfaces.OutboundMessage) error {
	data, err := json.Marshal(map[string]interface{}{
		"type":     "line",
		"text":     msg.Text,
		"emphasis": msg.Emphasis,
		"time":     time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	client := h.clients[userID]
	if client == nil {
		h.mu.RUnlock()
		return fmt.Errorf("user not connected: %s", userID)
	}

	select {
	case client.Send <- data:
		h.mu.RUnlock()
	default:
		h.mu.RUnlock()
		return fmt.Errorf("send buffer full for user: %s", userID)
	}

	if h.history != nil {
		if err := h.history.StoreMessage(ctx, userID, data); err != nil {
			// History is best effort
			log.Printf("[Hub] Failed to record message for %s: %v", userID, err)
		}
	}

	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.mu.Lock()
			if !ok {
				// Hub closed the channel
				c.closed = true
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.mu.Unlock()
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] Error writing to %s: %v", c.UserID, err)
				c.closed = true
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()

		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client] Error sending ping to %s: %v", c.UserID, err)
				c.closed = true
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.Conn.Close()
}

// readPump drains the WebSocket connection and unregisters on close. Inbound
// story events arrive over HTTP, not the socket, so reads are discarded.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Client] Unexpected close from %s: %v", c.UserID, err)
			}
			break
		}
	}
}
