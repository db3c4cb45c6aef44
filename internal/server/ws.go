package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/bird/internal/registry"
)

const (
	defaultStreamInterval = time.Second / 30
	writeWait             = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local viewer
	},
}

// CursorMessage is one broadcast frame of the cursor stream.
type CursorMessage struct {
	Timestamp int64            `json:"timestamp"`
	Cursors   []registry.Entry `json:"cursors"`
}

// CursorHub pushes every registered cursor's latest snapshot, with its debug
// geometry, to all websocket clients at a fixed interval.
type CursorHub struct {
	registry *registry.Registry
	interval time.Duration
	clients  map[*websocket.Conn]*sync.Mutex
	mu       sync.RWMutex
	done     chan struct{}
	once     sync.Once
}

// NewCursorHub creates a hub and starts its broadcast loop.
func NewCursorHub(reg *registry.Registry, interval time.Duration) *CursorHub {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	h := &CursorHub{
		registry: reg,
		interval: interval,
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

// ServeHTTP upgrades the request and keeps the client until it disconnects.
func (h *CursorHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *CursorHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops broadcasting and closes every client connection.
func (h *CursorHub) Close() {
	h.once.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.mu.Unlock()
	})
}

func (h *CursorHub) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			if h.Clients() == 0 {
				continue
			}
			h.broadcast(now)
		}
	}
}

func (h *CursorHub) broadcast(now time.Time) {
	cursors := h.registry.All()
	msg, err := json.Marshal(CursorMessage{Timestamp: now.UnixMilli(), Cursors: cursors})
	if err != nil {
		log.Printf("Error encoding cursor message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, wmu := range h.clients {
		wmu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, msg)
		wmu.Unlock()
		if err != nil {
			conn.Close()
		}
	}
}
