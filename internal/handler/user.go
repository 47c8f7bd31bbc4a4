package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/auth"
	"github.com/sakif/pingme/internal/service"
)

// UserHandler exposes profile updates.
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"` // base64 data URL
}

// HandleUpdateProfile replaces the caller's avatar.
//
// HTTP: PUT /api/users/profile (requires auth)
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON request body"))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.ProfilePic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
