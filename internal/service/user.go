package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/repository"
)

// UserService covers profile updates.
type UserService struct {
	users  repository.UserRepository
	images ImageStore
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, images ImageStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, images: images, logger: logger}
}

// UpdateProfile replaces the caller's avatar. The picture arrives as a base64
// data URL; when an object store is configured it is uploaded and the stored
// value becomes the public URL.
func (s *UserService) UpdateProfile(ctx context.Context, userID, profilePic string) (*model.User, error) {
	if profilePic == "" {
		return nil, apperror.ValidationFailed("profilePic", "Profile picture is required")
	}

	picURL := profilePic
	if s.images != nil {
		url, err := s.images.UploadDataURL(ctx, profilePic)
		if err != nil {
			return nil, fmt.Errorf("service/user: uploading avatar: %w", err)
		}
		picURL = url
	}

	user, err := s.users.UpdateProfilePic(ctx, userID, picURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile picture updated", slog.String("userID", userID))

	return user, nil
}
