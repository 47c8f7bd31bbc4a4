// Package linktoken encodes user IDs into the opaque, URL-safe tokens that
// ride inside email-verification magic links.
//
// TOKEN FORMAT:
//
//	base64url(IV) + ":" + base64url(ciphertext)
//
// The plaintext is the 24-hex-character user ID, right-padded with NUL bytes
// to the AES block size and encrypted with AES-256-CBC under a single
// process-wide key. Both base64 segments are URL-safe and unpadded, so the
// token can be dropped into a query string without escaping.
//
// SECURITY MODEL:
// CBC provides no authentication, so "tamper-resistant" here means: a forged
// or corrupted token decrypts to garbage that fails the 24-hex pattern check
// in IsValid. Every failure mode — wrong segment count, bad base64, wrong IV
// size, wrong key — collapses to the same boolean false (or the same generic
// ErrDecode), so a caller probing the endpoint learns nothing about WHY a
// token was rejected.
//
// Tokens carry no expiry and no single-use marker. Validity is defined
// entirely by successful decryption; rotating the key invalidates every
// outstanding link at once.
package linktoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Public errors. Decode never reveals which internal check failed.
var (
	ErrInvalidIdentifier = errors.New("linktoken: identifier must be 24 lowercase hex characters")
	ErrDecode            = errors.New("linktoken: token could not be decoded")
)

// Internal failure variants. Unexported on purpose: tests in this package can
// inspect exactly which check rejected a token, while external callers only
// ever see ErrDecode or IsValid's false.
var (
	errSegmentCount   = errors.New("token must have exactly two colon-separated segments")
	errBase64         = errors.New("segment is not valid base64url")
	errIVSize         = errors.New("IV must be 16 bytes")
	errCiphertextSize = errors.New("ciphertext must be a non-empty multiple of the block size")
)

// identifierPattern is the exact shape of a user ID: 24 lowercase hex chars.
var identifierPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)

// Codec encrypts and decrypts link tokens under one symmetric key.
// It is stateless apart from the key and safe for concurrent use.
type Codec struct {
	key []byte
}

// New creates a Codec from a base64-encoded (standard alphabet) 256-bit key,
// matching how the key is stored in configuration.
//
// Generate one with: openssl rand -base64 32
func New(base64Key string) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("linktoken: key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("linktoken: key must be 32 bytes, got %d", len(key))
	}
	return &Codec{key: key}, nil
}

// Encode encrypts a user ID into a link token.
//
// The ID must match ^[a-f0-9]{24}$ exactly or ErrInvalidIdentifier is
// returned. Each call draws a fresh random IV, so encoding the same ID twice
// yields two different tokens that both decode back to it.
func (c *Codec) Encode(id string) (string, error) {
	if !identifierPattern.MatchString(id) {
		return "", ErrInvalidIdentifier
	}

	// Right-pad with NULs to the next multiple of the block size.
	// For the fixed 24-byte input this always yields 32 bytes.
	pad := aes.BlockSize - len(id)%aes.BlockSize
	plaintext := make([]byte, len(id)+pad)
	copy(plaintext, id)

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("linktoken: generating IV: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("linktoken: creating cipher: %w", err)
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return base64.RawURLEncoding.EncodeToString(iv) +
		":" +
		base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decode recovers the user ID from a link token.
//
// Any malformed or undecryptable token yields the single generic ErrDecode.
// Decode performs no pattern check on the recovered plaintext — callers are
// expected to gate on IsValid first, which does.
func (c *Codec) Decode(token string) (string, error) {
	id, err := c.decode(token)
	if err != nil {
		return "", ErrDecode
	}
	return id, nil
}

// IsValid reports whether a token decodes to a well-formed user ID.
//
// It never fails visibly: wrong segment count, invalid base64, a wrong-sized
// IV, a truncated ciphertext, or decryption under a different key all produce
// false. True requires both a clean decode AND a 24-hex plaintext.
func (c *Codec) IsValid(token string) bool {
	id, err := c.decode(token)
	return err == nil && identifierPattern.MatchString(id)
}

// decode is the real decoder. It returns the specific internal failure so
// tests can assert on individual checks; the exported surface collapses all
// of them.
func (c *Codec) decode(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return "", errSegmentCount
	}

	iv, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errBase64
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", errBase64
	}

	if len(iv) != aes.BlockSize {
		return "", errIVSize
	}
	// CBCDecrypter panics on a partial block; reject before it can.
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", errCiphertextSize
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return strings.TrimRight(string(plaintext), "\x00"), nil
}
