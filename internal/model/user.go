// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// WHY A 24-HEX-CHARACTER ID?
// User IDs are 12 random bytes rendered as 24 lowercase hex characters. The
// magic-link codec (internal/linktoken) encrypts exactly this format into
// email-verification links, so the ID format is part of the verification
// contract — changing it would invalidate the codec's input check.
//
// PasswordHash carries the `json:"-"` tag: it is NEVER serialized. Every
// endpoint that returns a user returns this struct directly, so the tag is
// the single line that keeps hashes out of API responses.
type User struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfilePic   string    `json:"profilePic"` // avatar URL (may be empty)
	Verified     bool      `json:"verified"`   // true once the email link was consumed
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
