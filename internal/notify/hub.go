package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	KindNotification = "notification"

	recentSize     = 64
	sendBufferSize = 32
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// Notification is published after a module changed its state.
type Notification struct {
	ID        string    `json:"id"`
	Module    string    `json:"module"`
	Action    string    `json:"action"`
	Kind      string    `json:"kind"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans notifications out to WebSocket subscribers.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	recent   []Notification
	closed   bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Publish records the notification and broadcasts it. Subscribers whose
// send buffer is full are disconnected.
func (h *Hub) Publish(module, action string, data any) {
	n := Notification{
		ID:        uuid.NewString(),
		Module:    module,
		Action:    action,
		Kind:      KindNotification,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(n)
	if err != nil {
		slog.Error("Failed to marshal notification", "module", module, "action", action, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, n)
	if len(h.recent) > recentSize {
		h.recent = h.recent[len(h.recent)-recentSize:]
	}

	for id, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slog.Warn("Dropping slow notification subscriber", "client_id", id)
			delete(h.clients, id)
			c.close()
		}
	}
	slog.Debug("Notification published", "module", module, "action", action, "subscribers", len(h.clients))
}

// Recent returns the last published notifications, oldest first.
func (h *Hub) Recent() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Notification(nil), h.recent...)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams notifications until the peer
// goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "notifications are shut down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	slog.Info("Notification subscriber connected", "client_id", c.id)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		c.close()
	}
	h.mu.Unlock()
}

// readPump discards client input; it exists to process control frames and
// to notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		slog.Info("Notification subscriber disconnected", "client_id", c.id)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}
