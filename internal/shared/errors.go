package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates a missing or wrong shared secret.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSecretNotConfigured indicates the server has no secret to compare against.
	ErrSecretNotConfigured = errors.New("secret not configured")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
