package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/realtime"
	"github.com/sakif/pingme/internal/repository"
)

// Notifier pushes an event to a single user's live connection, if any.
// Implemented by realtime.Presence.
type Notifier interface {
	RelayToUser(ctx context.Context, userID string, ev realtime.Event)
}

// ChatService handles the contact sidebar, conversation history, and sending.
type ChatService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	notifier Notifier
	images   ImageStore
	logger   *slog.Logger
}

func NewChatService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	notifier Notifier,
	images ImageStore,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		users:    users,
		messages: messages,
		notifier: notifier,
		images:   images,
		logger:   logger,
	}
}

// Contacts returns every other user, for the chat sidebar.
func (s *ChatService) Contacts(ctx context.Context, userID string) ([]model.User, error) {
	return s.users.List(ctx, userID)
}

// Conversation returns the full history between the caller and another user,
// oldest first.
func (s *ChatService) Conversation(ctx context.Context, userID, otherID string) ([]model.Message, error) {
	if otherID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.messages.Conversation(ctx, userID, otherID)
}

// Send persists a message and relays it to the receiver's live connection.
//
// The relay is best-effort: an offline receiver simply fetches the message
// from history next time, so a failed or skipped push never fails the send.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, text, image string) (*model.Message, error) {
	text = strings.TrimSpace(text)

	if text == "" && image == "" {
		return nil, apperror.ValidationFailed("text", "Message must have text or an image")
	}
	if senderID == receiverID {
		return nil, apperror.ValidationFailed("id", "Cannot send a message to yourself")
	}
	// The receiver must exist before anything is stored.
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	imageURL := image
	if image != "" && s.images != nil {
		url, err := s.images.UploadDataURL(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("service/chat: uploading message image: %w", err)
		}
		imageURL = url
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		slog.String("messageID", msg.ID),
		slog.String("senderID", senderID),
		slog.String("receiverID", receiverID),
	)

	s.notifier.RelayToUser(ctx, receiverID, realtime.NewMessage(msg))

	return msg, nil
}
