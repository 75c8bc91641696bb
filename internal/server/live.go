package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"artwork-sequencer/internal/project"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Viewer links are opened from any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveMessage is pushed to viewers when their record changes.
type liveMessage struct {
	Type    string          `json:"type"`
	Updated time.Time       `json:"updated"`
	Record  *project.Record `json:"record"`
}

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans viewer updates out to connected websocket clients.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*liveClient]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*liveClient]struct{})}
}

func (h *Hub) add(id string, c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[*liveClient]struct{})
	}
	h.subs[id][c] = struct{}{}
}

func (h *Hub) remove(id string, c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.subs[id]
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.subs, id)
	}
}

// Subscribers returns how many clients follow viewer id.
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}

// Broadcast sends msg to every client following viewer id. Clients whose
// buffer is full are dropped rather than blocking the caller.
func (h *Hub) Broadcast(id string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("encode live message", "id", id, "error", err)
		return
	}
	h.mu.Lock()
	var slow []*liveClient
	for c := range h.subs[id] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()
	for _, c := range slow {
		slog.Warn("dropping slow live client", "id", id)
		h.remove(id, c)
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.subs {
		for c := range clients {
			close(c.send)
		}
		delete(h.subs, id)
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.store.Viewer(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		loggerFor(r).Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &liveClient{conn: conn, send: make(chan []byte, sendBuffer)}
	hello, err := json.Marshal(liveMessage{Type: "snapshot", Updated: v.Updated, Record: v.Record})
	if err != nil {
		conn.Close()
		return
	}
	c.send <- hello
	s.hub.add(id, c)
	loggerFor(r).Info("live client connected", "id", id)

	go c.writeLoop()
	c.readLoop()
	s.hub.remove(id, c)
	loggerFor(r).Info("live client disconnected", "id", id)
}

// readLoop discards client messages and returns when the connection drops.
func (c *liveClient) readLoop() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
