package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/auth"
	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/repository"
)

// MinPasswordLength is the floor for new account passwords.
const MinPasswordLength = 6

// AuthService owns the signup, login, and email-verification flows.
//
// DEPENDENCIES:
//   - users     — account storage
//   - tokens    — session JWTs
//   - passwords — bcrypt hashing
//   - codec     — magic-link tokens for verification emails
//   - mailer    — delivers the verification email
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	codec     LinkCodec
	mailer    Mailer
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	codec LinkCodec,
	mailer Mailer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		codec:     codec,
		mailer:    mailer,
		logger:    logger,
	}
}

// AuthResult bundles a user with a freshly issued session token so the
// handler can set the cookie and write the response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup creates a new, unverified account and sends the verification email.
//
// The created account cannot hold a session yet — no token is issued until
// either login or the verification link. A mailer failure after the account
// is committed is logged but does not fail the signup: the account exists
// and a verification email can be re-triggered operationally, whereas
// erroring here would leave the client unsure whether the email is taken.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	fullName = strings.TrimSpace(fullName)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "Email is not valid")
	}
	if fullName == "" {
		return nil, apperror.ValidationFailed("fullName", "Name is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
	}
	// The repository surfaces a duplicate email as apperror.ErrConflict.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	linkID, err := s.codec.Encode(user.ID)
	if err != nil {
		// Only possible if the repository produced a malformed ID.
		return nil, fmt.Errorf("service/auth: minting verification link for %s: %w", user.ID, err)
	}
	if s.mailer == nil {
		s.logger.Warn("no mailer configured, skipping verification email",
			slog.String("userID", user.ID),
		)
	} else if err := s.mailer.SendVerification(user.Email, user.FullName, linkID); err != nil {
		s.logger.Error("verification email failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// Login checks credentials and issues a session.
//
// Unknown email and wrong password produce the same generic Unauthorized —
// the response must not reveal which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid Credentials")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Invalid Credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// VerifyEmail consumes a magic-link token, marks the account verified, and
// issues a session so the user lands logged in.
//
// Every token-level failure — malformed, forged, encrypted under an old
// key — collapses into one generic Unauthorized. IsValid gates before
// Decode, so the decoded value is only ever used after it is known to be a
// well-formed user ID.
func (s *AuthService) VerifyEmail(ctx context.Context, linkID string) (*AuthResult, error) {
	if linkID == "" || !s.codec.IsValid(linkID) {
		return nil, apperror.Unauthorized("Your email address could not be verified")
	}

	userID, err := s.codec.Decode(linkID)
	if err != nil {
		return nil, apperror.Unauthorized("Your email address could not be verified")
	}

	user, err := s.users.MarkVerified(ctx, userID)
	if err != nil {
		// A valid token for a since-deleted user: genuine not-found.
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.ID, err)
	}

	s.logger.Info("email verified", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID backs the /api/auth/check endpoint.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}
