package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

// SessionIDLength is the number of random bytes used to generate session IDs.
// 32 bytes provides 256 bits of entropy, enough to make IDs unguessable.
const SessionIDLength = 32

// sessionIDPattern matches the base64 URL alphabet used by GenerateSessionID.
// Path separators and dots can never appear, so a matching ID is safe to use
// as a directory name.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,64}$`)

// GenerateSessionID generates a cryptographically secure random session ID.
// Returns a base64 URL-encoded string of 32 random bytes (43 characters),
// safe for use in URLs and as a file-system directory name.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes), nil
}

// ValidateSessionID checks that an inbound session ID has the shape produced
// by GenerateSessionID. This must be called before the ID is used in any
// file-system path: it rejects traversal sequences, separators, and anything
// outside the base64 URL alphabet.
func ValidateSessionID(id string) error {
	if id == "" {
		return NewValidationError("session ID", "must not be empty")
	}
	if !sessionIDPattern.MatchString(id) {
		return NewValidationError("session ID", "contains characters outside the allowed set")
	}
	return nil
}
