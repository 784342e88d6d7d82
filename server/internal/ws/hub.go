package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/server/internal/binding"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageSize bounds one inbound control message.
	maxMessageSize = 4096
)

// Event names.
const (
	EventHello  = "hello"
	EventOutput = "output"
	EventError  = "error"
	EventInput  = "input"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id,omitempty"`
	Output    string `json:"output,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Input is the JSON envelope received from clients.
type Input struct {
	Event   string          `json:"event"`
	Control string          `json:"control"`
	Value   json.RawMessage `json:"value"`
}

// RejectObserver is notified of every input the hub answers with an error.
type RejectObserver interface {
	ObserveRejectedInput()
}

// Hub manages WebSocket client connections, each with its own reactive
// session over a shared binding.Registry.
type Hub struct {
	registry *binding.Registry
	rejected RejectObserver

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	id      string
	conn    *websocket.Conn
	session *binding.Session
	send    chan []byte

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a Hub that opens sessions on reg. rejected may be nil.
func New(reg *binding.Registry, rejected RejectObserver) *Hub {
	return &Hub{
		registry: reg,
		rejected: rejected,
		clients:  make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves one session.
// Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		session: h.registry.NewSession(),
		send:    make(chan []byte, sendBufSize),
		quit:    make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	log := slog.With("session", c.id)
	log.Debug("ws: session opened", "remote", r.RemoteAddr)
	defer log.Debug("ws: session closed")

	go c.writePump()

	ctx := r.Context()
	c.enqueue(Message{Event: EventHello, SessionID: c.id})
	for _, u := range c.session.Initial(ctx) {
		c.enqueue(Message{Event: EventOutput, Output: u.Output, Data: u.Data})
	}

	c.readPump(func(raw []byte) {
		h.handle(ctx, log, c, raw)
	})
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.stop()
		delete(h.clients, c)
	}
}

// handle processes one inbound frame. Recomputation runs synchronously on the
// read goroutine, so the next frame is not read before it completes.
func (h *Hub) handle(ctx context.Context, log *slog.Logger, c *client, raw []byte) {
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		h.reject(log, c, "malformed message: "+err.Error())
		return
	}
	if in.Event != EventInput {
		h.reject(log, c, "unsupported event "+quote(in.Event))
		return
	}

	updates, err := c.session.Set(ctx, in.Control, in.Value)
	if err != nil {
		h.reject(log, c, err.Error())
		return
	}
	for _, u := range updates {
		c.enqueue(Message{Event: EventOutput, Output: u.Output, Data: u.Data})
	}
}

func (h *Hub) reject(log *slog.Logger, c *client, reason string) {
	log.Debug("ws: input rejected", "reason", reason)
	if h.rejected != nil {
		h.rejected.ObserveRejectedInput()
	}
	c.enqueue(Message{Event: EventError, Error: reason})
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// enqueue marshals m and hands it to the write pump. A client whose buffer is
// full is disconnected.
func (c *client) enqueue(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("ws: marshal message", "event", m.Event, "err", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.quit:
	default:
		// Client's outgoing buffer is full; disconnect it.
		c.stop()
	}
}

// stop tells the write pump to send a close frame and exit. Safe to call more
// than once.
func (c *client) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-c.quit:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads text frames and passes each to fn. Blocks until the
// connection closes.
func (c *client) readPump(fn func([]byte)) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		typ, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if typ == websocket.TextMessage {
			fn(msg)
		}
	}
}
