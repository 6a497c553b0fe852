package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ProgressEvent is pushed to WebSocket clients as analysis runs progress.
type ProgressEvent struct {
	Status    string `json:"status"`
	File      string `json:"file,omitempty"`
	Page      int    `json:"page,omitempty"`
	Total     int    `json:"total,omitempty"`
	Instances int    `json:"instances,omitempty"`
	Shapes    int    `json:"shapes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ProgressHub fans ProgressEvents out to all connected WebSocket clients.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan ProgressEvent
}

// NewProgressHub creates an empty hub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[*websocket.Conn]chan ProgressEvent)}
}

// Broadcast queues an event for every connected client. Slow clients drop
// events rather than block the pipeline.
func (h *ProgressHub) Broadcast(event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *ProgressHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *ProgressHub) register(conn *websocket.Conn) chan ProgressEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ProgressEvent, 16)
	h.clients[conn] = ch
	return ch
}

func (h *ProgressHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS policy for the socket is the same as for the HTTP endpoints.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressWebSocketHandler upgrades the connection and streams progress
// events until the client disconnects.
func (s *Server) progressWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	websocketConnections.Inc()
	events := s.hub.register(conn)

	defer func() {
		s.hub.unregister(conn)
		websocketConnections.Dec()
		_ = conn.Close()
	}()

	// Reader goroutine: consume control frames and detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			websocketMessagesTotal.WithLabelValues("received").Inc()
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			websocketMessagesTotal.WithLabelValues("sent").Inc()
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
