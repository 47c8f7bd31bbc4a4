package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/sakif/pingme/internal/auth"
)

// newGatewayServer stands up the full realtime stack behind OptionalAuth,
// exactly as the server mounts it.
func newGatewayServer(t *testing.T) (*httptest.Server, *Hub, *Presence, *auth.TokenService) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	logger := discardLogger()
	hub := NewHub(logger)
	presence := NewPresence(NewRegistry(), hub, logger)
	gateway := NewGateway(hub, presence, logger)

	srv := httptest.NewServer(auth.OptionalAuth(tokens)(http.HandlerFunc(gateway.HandleWS)))
	t.Cleanup(srv.Close)
	return srv, hub, presence, tokens
}

func dialGateway(ctx context.Context, t *testing.T, srv *httptest.Server, sessionToken string) *websocket.Conn {
	t.Helper()

	var opts *websocket.DialOptions
	if sessionToken != "" {
		header := http.Header{}
		header.Set("Cookie", auth.SessionCookie+"="+sessionToken)
		opts = &websocket.DialOptions{HTTPHeader: header}
	}

	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close(websocket.StatusNormalClosure, "") })
	return ws
}

func TestGatewayRegistersAuthenticatedConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, _, presence, tokens := newGatewayServer(t)
	const userID = "507f1f77bcf86cd799439011"

	token, err := tokens.Generate(userID)
	require.NoError(t, err)

	ws := dialGateway(ctx, t, srv, token)

	// The connect broadcast goes to everyone, including the new arrival.
	ev := readEvent(ctx, t, ws)
	assert.Equal(t, string(EventOnlineUsers), ev.Event)
	assert.JSONEq(t, `["`+userID+`"]`, string(ev.Data))

	_, online := presence.ActiveConnection(userID)
	assert.True(t, online, "authenticated socket should be registered")
}

func TestGatewayDisconnectCleansUp(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, _, presence, tokens := newGatewayServer(t)
	const userID = "507f1f77bcf86cd799439011"

	token, err := tokens.Generate(userID)
	require.NoError(t, err)

	ws := dialGateway(ctx, t, srv, token)
	readEvent(ctx, t, ws) // wait until registration is visible

	require.NoError(t, ws.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		_, online := presence.ActiveConnection(userID)
		return !online
	}, 3*time.Second, 10*time.Millisecond, "user should go offline after the socket closes")
}

func TestGatewayAnonymousGetsBroadcastsButStaysUnregistered(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, hub, presence, tokens := newGatewayServer(t)
	const userID = "507f1f77bcf86cd799439011"

	// Anonymous first: no cookie, no registration, no broadcast yet.
	anon := dialGateway(ctx, t, srv, "")
	require.Eventually(t, func() bool { return hub.Len() == 1 },
		3*time.Second, 10*time.Millisecond, "anonymous socket should join the hub")

	token, err := tokens.Generate(userID)
	require.NoError(t, err)
	authed := dialGateway(ctx, t, srv, token)

	// The authenticated arrival triggers a broadcast that reaches the
	// anonymous socket too.
	ev := readEvent(ctx, t, anon)
	assert.Equal(t, string(EventOnlineUsers), ev.Event)
	assert.JSONEq(t, `["`+userID+`"]`, string(ev.Data))

	readEvent(ctx, t, authed)

	// Only the authenticated user is counted as online.
	_, online := presence.ActiveConnection(userID)
	assert.True(t, online)
	assert.Equal(t, []string{userID}, presence.registry.OnlineUsers())
}
