// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the concrete implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/pingme/internal/model"
)

// UserRepository stores user accounts, keyed by a 24-hex-character ID
// generated at insert time.
type UserRepository interface {
	// Create inserts a new user and fills in ID and timestamps.
	// Returns apperror.ErrConflict when the email is already taken.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns apperror.ErrNotFound for unknown IDs.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail returns apperror.ErrNotFound for unknown emails.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns every user except excludeID, newest first.
	List(ctx context.Context, excludeID string) ([]model.User, error)

	// MarkVerified sets the verified flag and returns the updated user.
	MarkVerified(ctx context.Context, id string) (*model.User, error)

	// UpdateProfilePic replaces the avatar URL and returns the updated user.
	UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error)
}

// MessageRepository stores chat messages.
type MessageRepository interface {
	// Create inserts a message and fills in ID and CreatedAt.
	Create(ctx context.Context, msg *model.Message) error

	// Conversation returns all messages between two users, in either
	// direction, oldest first.
	Conversation(ctx context.Context, userA, userB string) ([]model.Message, error)
}
