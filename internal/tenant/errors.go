package tenant

import "errors"

var (
	// ErrNotFound is returned when no tenant matches the given id,
	// email, verify token or API key.
	ErrNotFound = errors.New("tenant not found")

	// ErrDuplicateEmail is returned by Register when the contact email
	// is already taken.
	ErrDuplicateEmail = errors.New("tenant email already registered")

	// ErrInvalidKey is returned by ResolveAPIKey for unknown or
	// deactivated keys.
	ErrInvalidKey = errors.New("invalid API key")
)
