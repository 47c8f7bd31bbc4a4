package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/auth"
	"github.com/sakif/pingme/internal/service"
)

// MessageHandler exposes the chat endpoints: the contact sidebar, the
// per-conversation history, and sending.
//
// All three routes sit behind RequireAuth, so the caller's identity always
// comes from the context, never from the request body. A client cannot send
// a message as someone else.
type MessageHandler struct {
	chatService *service.ChatService
	logger      *slog.Logger
}

func NewMessageHandler(chatService *service.ChatService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{chatService: chatService, logger: logger}
}

// HandleContacts lists every other user for the sidebar.
//
// HTTP: GET /api/messages/users (requires auth)
func (h *MessageHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	users, err := h.chatService.Contacts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleConversation returns the full history with one other user,
// oldest first.
//
// HTTP: GET /api/messages/{id} (requires auth)
func (h *MessageHandler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	otherID := chi.URLParam(r, "id")

	messages, err := h.chatService.Conversation(r.Context(), userID, otherID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

type sendRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 data URL, optional
}

// HandleSend persists a message to the user in the URL and pushes it to
// their live connection when they are online.
//
// HTTP: POST /api/messages/send/{id} (requires auth)
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	receiverID := chi.URLParam(r, "id")

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON request body"))
		return
	}

	msg, err := h.chatService.Send(r.Context(), userID, receiverID, req.Text, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
