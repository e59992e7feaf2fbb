package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("auth: validation failed")
	// ErrInvalidCredentials is returned for unknown, inactive, or wrong-secret logins alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrDirectoryUnavailable wraps failures of the principal directory.
	ErrDirectoryUnavailable = errors.New("auth: directory unavailable")
	// ErrUnauthenticated covers missing, malformed, and expired bearer tokens.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	ErrMalformedToken = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrUnauthenticated)
)
