package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/repository"
)

// UserStore implements repository.UserRepository on the shared pool.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

// newUserID generates a user ID: 12 random bytes as 24 lowercase hex
// characters. The format is load-bearing — the magic-link codec only
// accepts identifiers of exactly this shape.
func newUserID() (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating user id: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// Create inserts a new user. The email's uniqueness is enforced by the
// UNIQUE constraint; a violation surfaces as apperror.ErrConflict so the
// handler can answer 409 without a prior SELECT racing the INSERT.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	id, err := newUserID()
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	now := time.Now()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO users (id, full_name, email, password_hash, profile_pic, verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.ProfilePic,
		user.Verified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email already exists")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// isUniqueViolation matches modernc.org/sqlite's constraint error text.
// The driver wraps SQLITE_CONSTRAINT_UNIQUE without an exported type, so
// string matching is the available seam.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a user by internal ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *UserStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, full_name, email, password_hash, profile_pic, verified, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.ProfilePic,
		&u.Verified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user (%v): %w", arg, err)
	}

	return &u, nil
}

// List returns every user except excludeID, newest first. This backs the
// contact sidebar, so password hashes come along in the struct but are
// stripped by the model's json tags, never by this layer.
func (s *UserStore) List(ctx context.Context, excludeID string) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, full_name, email, password_hash, profile_pic, verified, created_at, updated_at
		 FROM users WHERE id != ? ORDER BY created_at DESC`,
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.FullName,
			&u.Email,
			&u.PasswordHash,
			&u.ProfilePic,
			&u.Verified,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// MarkVerified flips the verified flag and returns the updated record.
func (s *UserStore) MarkVerified(ctx context.Context, id string) (*model.User, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE users SET verified = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marking user %s verified: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return s.GetByID(ctx, id)
}

// UpdateProfilePic replaces the avatar URL and returns the updated record.
func (s *UserStore) UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE users SET profile_pic = ?, updated_at = ? WHERE id = ?`,
		url, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating profile pic for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return s.GetByID(ctx, id)
}
