// Package service contains the business logic layer.
//
// Services accept primitives and return domain models and apperror values;
// they know nothing about HTTP. The handler layer translates requests in and
// errors out, which keeps every rule here callable from a plain test.
package service

import "context"

// Mailer sends the signup verification email. Implemented by
// internal/mailer; tests use a recording fake.
type Mailer interface {
	SendVerification(to, fullName, linkID string) error
}

// LinkCodec mints and checks email-verification link tokens.
// Implemented by internal/linktoken.
type LinkCodec interface {
	Encode(id string) (string, error)
	Decode(token string) (string, error)
	IsValid(token string) bool
}

// ImageStore uploads a base64 data URL and returns a public URL.
// Implemented by internal/storage; nil means no object store is configured.
type ImageStore interface {
	UploadDataURL(ctx context.Context, dataURL string) (string, error)
}
