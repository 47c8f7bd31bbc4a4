package realtime

import (
	"context"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/sakif/pingme/internal/auth"
)

// Gateway is the HTTP side of the realtime layer: it upgrades requests to
// websockets, wires the connection into the hub, tells Presence about the
// lifecycle, and then reads until the client goes away.
//
// IDENTITY AT HANDSHAKE:
// The connection's user identity comes from the validated JWT cookie, not
// from anything the client sends over the socket. The route is mounted
// behind OptionalAuth, so an unauthenticated browser can still open the
// socket — it stays anonymous, receives broadcasts, and is never counted as
// online.
type Gateway struct {
	hub      *Hub
	presence *Presence
	logger   *slog.Logger
}

func NewGateway(hub *Hub, presence *Presence, logger *slog.Logger) *Gateway {
	return &Gateway{
		hub:      hub,
		presence: presence,
		logger:   logger,
	}
}

// HandleWS upgrades the request and runs the connection until it closes.
//
// HTTP: GET /ws
//
// Clients never send application data over the socket (messages go through
// the REST API); the read loop exists to observe the close. Anything the
// client does write is discarded.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket accept failed",
			slog.String("remote", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}

	connID := g.hub.Add(ws)
	defer func() {
		g.hub.Remove(connID)
		// Presence cleanup uses the identity captured at connect time. A
		// background context: the request context is already cancelled by
		// the time the client has disconnected, but the offline broadcast
		// to everyone else must still go out.
		g.presence.Disconnect(context.Background(), userID, connID)
		ws.Close(websocket.StatusNormalClosure, "")
	}()

	g.presence.Connect(r.Context(), userID, connID)

	// Read until the client disconnects. r.Context() is cancelled when the
	// underlying HTTP connection drops, which unblocks the read.
	ctx := r.Context()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			g.logger.Debug("websocket closed",
				slog.String("connID", connID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}
