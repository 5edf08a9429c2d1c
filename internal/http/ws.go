package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vehicle-decoder/internal/domain/vehicle"
	"vehicle-decoder/internal/observability"
)

// FeedBacklog is how many resolved lookups a new feed client receives
// as backlog on connect.
const FeedBacklog = 20

// defaultWriteWait bounds a single feed write. A client that stops
// reading fails the write once its buffers fill and is dropped instead
// of holding the hub lock.
const defaultWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans resolved lookups out to connected feed clients. It keeps a
// short ring of recent events that is replayed to new connections so a
// fresh dashboard is not empty.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	recent    []vehicle.LookupEvent
	writeWait time.Duration
	log       zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]struct{}),
		writeWait: defaultWriteWait,
		log:       log,
	}
}

// Seed primes the backlog with events loaded from history at startup so
// the replay ring survives a restart. Events must be oldest first.
func (h *Hub) Seed(events []vehicle.LookupEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(events) > FeedBacklog {
		events = events[len(events)-FeedBacklog:]
	}
	h.recent = append([]vehicle.LookupEvent(nil), events...)
}

// Add registers a client and replays the backlog to it. A client whose
// replay write fails is dropped on the spot.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[conn] = struct{}{}
	observability.FeedConnections.Inc()

	for _, ev := range h.recent {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(conn)
			return
		}
	}
}

// Remove drops a client and closes its connection. Safe to call for a
// connection the hub no longer tracks.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		observability.FeedConnections.Dec()
	}
	conn.Close()
}

// Broadcast appends the event to the backlog and sends it to every
// connected client. Every write carries a deadline so one stalled
// client cannot hold up the others; clients whose write fails are
// dropped.
func (h *Hub) Broadcast(ev vehicle.LookupEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal lookup event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, ev)
	if len(h.recent) > FeedBacklog {
		h.recent = h.recent[len(h.recent)-FeedBacklog:]
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(conn)
		}
	}
}

// drop closes and forgets a client. Callers must hold h.mu.
func (h *Hub) drop(conn *websocket.Conn) {
	conn.Close()
	delete(h.clients, conn)
	observability.FeedConnections.Dec()
}

// readPump drains client messages until the connection dies. The feed
// is one-way; inbound payloads are discarded.
func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
