package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/labbridge/labbridge/internal/registry"
	"github.com/labbridge/labbridge/internal/store"
)

const (
	// writeWait bounds a single frame write to a client.
	writeWait = 10 * time.Second

	// pongTimeout is how long a client may go silent before its connection
	// is treated as dead.
	pongTimeout = 60 * time.Second

	// pingInterval spaces the keepalive pings. It must stay well under
	// pongTimeout so a healthy client always answers in time.
	pingInterval = 54 * time.Second

	// clientQueueLen is how many pending broadcasts a client may fall
	// behind before it is dropped.
	clientQueueLen = 16
)

// CheckOrigin accepts everything; origin policy belongs to whatever proxy
// fronts the bridge.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope pushed to clients on every broadcast.
type Message struct {
	Event string   `json:"event"`
	Data  LabsData `json:"data"`
}

// LabsData carries the lab snapshot and when the bridge received it.
type LabsData struct {
	Labs      []registry.Lab `json:"labs"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

// Hub pushes the bridge's current lab snapshot to every connected dashboard
// client on a fixed interval. Clients get a snapshot immediately on connect,
// then one per tick.
type Hub struct {
	store    *store.Store
	interval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client is one dashboard connection with its outgoing queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub that reads snapshots from st and broadcasts every
// interval.
func New(st *store.Store, interval time.Duration) *Hub {
	return &Hub{
		store:    st,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run drives the broadcast ticker until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.disconnectAll()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and serves it
// until the peer goes away. Non-upgrade requests get a 400 from the
// upgrader.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientQueueLen),
	}
	h.track(c)
	defer h.drop(c)

	// First frame out is the current snapshot, so a freshly opened
	// dashboard is not blank until the next tick.
	if msg, err := h.snapshotJSON(); err == nil {
		c.send <- msg
	}

	go c.writePump()
	c.readPump()
}

// Count returns the number of connected clients. Reported by the health
// endpoint.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) track(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast() {
	msg, err := h.snapshotJSON()
	if err != nil {
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// A full queue means the client stopped reading; cut it loose rather
	// than stall future ticks.
	for _, c := range slow {
		h.drop(c)
	}
}

// snapshotJSON renders the hub's current view of the labs. Before the first
// poll completes the labs list is present but empty.
func (h *Hub) snapshotJSON() ([]byte, error) {
	data := LabsData{Labs: []registry.Lab{}}
	if st, at, ok := h.store.Latest(); ok {
		data.Labs = st.Labs
		data.UpdatedAt = at.UTC().Format(time.RFC3339)
	}
	return json.Marshal(Message{Event: "labs", Data: data})
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump forwards queued broadcasts to the peer and keeps the connection
// alive with pings. One goroutine per client; exits when the queue closes or
// a write fails.
func (c *client) writePump() {
	pings := time.NewTicker(pingInterval)
	defer pings.Stop()
	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub dropped this client; tell the peer before hanging up.
				c.write(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			if c.write(websocket.TextMessage, msg) != nil {
				return
			}

		case <-pings.C:
			if c.write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *client) write(kind int, payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return c.conn.WriteMessage(kind, payload)
}

// readPump drains inbound frames until the peer disconnects. The bridge
// never acts on client input; reading is what keeps pong handling and
// disconnect detection working.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
