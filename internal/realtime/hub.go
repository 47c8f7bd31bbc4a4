package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rs/xid"
	"nhooyr.io/websocket"
)

// conn wraps one websocket with a write lock. nhooyr.io/websocket allows only
// one concurrent writer per connection; the mutex serializes writes and, as a
// side effect, gives each connection FIFO delivery order — the property the
// presence layer relies on.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Write(ctx, websocket.MessageText, payload)
}

// Hub is the transport layer's connection table: every live websocket,
// keyed by an opaque connection ID issued at accept time. It knows nothing
// about users — that mapping lives in the Registry.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*conn
	logger *slog.Logger
}

// Hub implements the Sender seam used by Presence.
var _ Sender = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]*conn),
		logger: logger,
	}
}

// Add registers a freshly accepted websocket and returns its connection ID.
func (h *Hub) Add(ws *websocket.Conn) string {
	id := xid.New().String()
	h.mu.Lock()
	h.conns[id] = &conn{ws: ws}
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Debug("connection added",
		slog.String("connID", id),
		slog.Int("total", total),
	)
	return id
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Remove drops a connection from the table. Removing an unknown ID is a
// no-op. The websocket itself is closed by the gateway's read loop, not here.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.conns, id)
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Debug("connection removed",
		slog.String("connID", id),
		slog.Int("total", total),
	)
}

// Send pushes one event to one connection. An unknown connection ID is a
// silent no-op (the connection raced its own removal).
func (h *Hub) Send(ctx context.Context, connID string, ev Event) error {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.write(ctx, payload)
}

// Broadcast pushes one event to every connection, fire-and-forget. A failed
// write to one connection (usually one that is mid-close) is logged and the
// fan-out continues; its disconnect will tidy up shortly.
func (h *Hub) Broadcast(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("broadcast marshal failed",
			slog.String("event", string(ev.Name)),
			slog.String("error", err.Error()),
		)
		return
	}

	h.mu.RLock()
	targets := make(map[string]*conn, len(h.conns))
	for id, c := range h.conns {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(ctx, payload); err != nil {
			h.logger.Debug("broadcast write failed",
				slog.String("connID", id),
				slog.String("error", err.Error()),
			)
		}
	}
}
