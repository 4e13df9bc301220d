package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"adminstyler/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin sessions of the same admin; the nonce on the mutating
	// endpoints is the actual write guard.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// connWithMutex wraps a WebSocket connection with its own mutex for
// thread-safe writes.
type connWithMutex struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub is the server side of cross-session sync: every message received
// from one connection is fanned out to all connections, sender included.
// Senders discard their own echo by changeId.
type Hub struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*connWithMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]*connWithMutex),
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn] = &connWithMutex{conn: conn}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, conn)
}

// Broadcast sends a message to every connected session.
func (h *Hub) Broadcast(msg model.BroadcastMessage) {
	h.mu.RLock()
	conns := make([]*connWithMutex, 0, len(h.connections))
	for _, cwm := range h.connections {
		conns = append(conns, cwm)
	}
	h.mu.RUnlock()

	for _, cwm := range conns {
		cwm.mu.Lock()
		err := cwm.conn.WriteJSON(msg)
		cwm.mu.Unlock()

		if err != nil {
			// Connection is dead, remove it.
			h.remove(cwm.conn)
		}
	}
}

// Count reports the number of connected sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HandleSync upgrades the request and pumps inbound messages through
// Broadcast until the connection drops.
func (h *Hub) HandleSync(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[hub] upgrade failed: %v", err)
		return
	}
	h.add(conn)
	defer func() {
		h.remove(conn)
		conn.Close()
	}()

	for {
		var msg model.BroadcastMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[hub] read: %v", err)
			}
			return
		}
		h.Broadcast(msg)
	}
}
