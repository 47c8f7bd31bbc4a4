package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// identityRecorder captures what UserIDFromContext sees inside the handler.
type identityRecorder struct {
	called bool
	userID string
	ok     bool
}

func (p *identityRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.called = true
		p.userID, p.ok = UserIDFromContext(r.Context())
	})
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	ts := newTestTokenService(t)
	rh := &identityRecorder{}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	rec := httptest.NewRecorder()
	RequireAuth(ts)(rh.handler()).ServeHTTP(rec, req)

	if rh.called {
		t.Error("handler ran despite missing session cookie")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Error != "unauthorized" || body.Message == "" {
		t.Errorf("body = %+v, want the standard error envelope", body)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	ts := newTestTokenService(t)
	rh := &identityRecorder{}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	RequireAuth(ts)(rh.handler()).ServeHTTP(rec, req)

	if rh.called {
		t.Error("handler ran despite an invalid token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthPassesUserID(t *testing.T) {
	ts := newTestTokenService(t)
	const userID = "507f1f77bcf86cd799439011"

	token, err := ts.Generate(userID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	rh := &identityRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	RequireAuth(ts)(rh.handler()).ServeHTTP(rec, req)

	if !rh.called {
		t.Fatal("handler did not run for a valid token")
	}
	if !rh.ok || rh.userID != userID {
		t.Errorf("context userID = %q ok=%v, want %q", rh.userID, rh.ok, userID)
	}
}

func TestOptionalAuthAnonymousPassesThrough(t *testing.T) {
	ts := newTestTokenService(t)
	rh := &identityRecorder{}

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	OptionalAuth(ts)(rh.handler()).ServeHTTP(rec, req)

	if !rh.called {
		t.Fatal("handler did not run for an anonymous request")
	}
	if rh.ok {
		t.Errorf("anonymous request carried userID %q", rh.userID)
	}
}

func TestOptionalAuthExtractsIdentity(t *testing.T) {
	ts := newTestTokenService(t)
	const userID = "507f1f77bcf86cd799439011"

	token, err := ts.Generate(userID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	rh := &identityRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	OptionalAuth(ts)(rh.handler()).ServeHTTP(rec, req)

	if !rh.ok || rh.userID != userID {
		t.Errorf("context userID = %q ok=%v, want %q", rh.userID, rh.ok, userID)
	}
}
