package realtime

import (
	"context"
	"log/slog"
)

// Sender is the slice of the transport layer that presence logic needs:
// push one event to one connection, or to every connection. The hub
// implements it; tests use an in-memory fake.
//
// Both operations are best-effort. There is no acknowledgment, no retry, and
// no delivery guarantee — a client mid-disconnect may or may not receive an
// event. The transport must preserve per-connection FIFO ordering.
type Sender interface {
	Send(ctx context.Context, connID string, ev Event) error
	Broadcast(ctx context.Context, ev Event)
}

// Presence tracks connection lifecycle transitions and turns them into
// registry updates and online-set broadcasts.
//
// Per connection the states are: Connecting (handshake accepted, identity
// unknown or anonymous) → Registered (authenticated user id recorded) →
// Closed. Anonymous connections never leave Connecting — they still receive
// broadcasts, because broadcasts go to every transport connection, but they
// never appear in the online set.
//
// No operation here has an error path: register, unregister, lookup,
// broadcast, and relay are all total. A relay to an offline user and an
// unregister for an unknown connection are silent no-ops.
type Presence struct {
	registry *Registry
	sender   Sender
	logger   *slog.Logger
}

func NewPresence(registry *Registry, sender Sender, logger *slog.Logger) *Presence {
	return &Presence{
		registry: registry,
		sender:   sender,
		logger:   logger,
	}
}

// Connect handles a finished handshake. A non-empty userID moves the
// connection to Registered: the registry is upserted (replacing any previous
// connection for that user) and the new online set is broadcast to everyone,
// including the connection that just arrived. An empty userID leaves the
// connection anonymous and changes nothing.
func (p *Presence) Connect(ctx context.Context, userID, connID string) {
	if userID == "" {
		return
	}

	p.registry.Register(userID, connID)
	p.logger.Info("user online",
		slog.String("userID", userID),
		slog.String("connID", connID),
	)
	p.BroadcastOnlineUsers(ctx)
}

// Disconnect handles a transport-level close. The registry entry is removed
// only when connID is still the user's current connection; a stale
// disconnect from an already-replaced connection leaves the fresh entry
// alone and emits nothing (the online set did not change).
func (p *Presence) Disconnect(ctx context.Context, userID, connID string) {
	if userID == "" {
		return
	}

	if !p.registry.Unregister(userID, connID) {
		p.logger.Debug("stale disconnect ignored",
			slog.String("userID", userID),
			slog.String("connID", connID),
		)
		return
	}

	p.logger.Info("user offline",
		slog.String("userID", userID),
		slog.String("connID", connID),
	)
	p.BroadcastOnlineUsers(ctx)
}

// ActiveConnection reports the connection currently on file for a user.
// The message-send path uses this to decide whether a push is possible.
func (p *Presence) ActiveConnection(userID string) (string, bool) {
	return p.registry.ActiveConnection(userID)
}

// BroadcastOnlineUsers emits the current online set to every connection the
// transport holds, registered or not.
func (p *Presence) BroadcastOnlineUsers(ctx context.Context) {
	p.sender.Broadcast(ctx, OnlineUsers(p.registry.OnlineUsers()))
}

// RelayToUser pushes one event to a single user's active connection. When
// the user is offline the event is dropped — no queueing, no persistence.
func (p *Presence) RelayToUser(ctx context.Context, userID string, ev Event) {
	connID, ok := p.registry.ActiveConnection(userID)
	if !ok {
		return
	}
	if err := p.sender.Send(ctx, connID, ev); err != nil {
		// The connection may be mid-close; the next disconnect event will
		// clean up the registry.
		p.logger.Warn("relay failed",
			slog.String("userID", userID),
			slog.String("connID", connID),
			slog.String("event", string(ev.Name)),
			slog.String("error", err.Error()),
		)
	}
}
