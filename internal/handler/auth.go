package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/auth"
	"github.com/sakif/pingme/internal/service"
)

// AuthHandler exposes signup, login, logout, session check, and the
// email-verification landing endpoint.
//
// SESSION COOKIE:
// Every route that establishes a session sets the same HttpOnly cookie.
// Logout clears it with MaxAge -1. The cookie is SameSite=Strict — the API
// and the SPA are served from one origin, so nothing cross-site ever needs
// to carry it.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup creates an account and triggers the verification email.
//
// HTTP: POST /api/auth/signup
//
// No session is issued here. The user logs in either through the link in
// the verification email or with their password.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON request body"))
		return
	}

	user, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and sets the session cookie.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON request body"))
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res.User)
}

// HandleLogout clears the session cookie. Always succeeds, even without a
// session — logging out twice is not an error.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleCheck returns the logged-in user's profile. The SPA calls this on
// load to restore the session.
//
// HTTP: GET /api/auth/check (requires auth)
func (h *AuthHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleVerifyEmail consumes the magic-link token from the verification
// email, marks the account verified, and logs the user in.
//
// HTTP: POST /api/auth/verify-email?linkId=<token>
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	linkID := r.URL.Query().Get("linkId")

	res, err := h.authService.VerifyEmail(r.Context(), linkID)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res.User)
}
