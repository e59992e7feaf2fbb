package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/storage"
)

// dummyHash is compared against whenever no real digest is available, so
// every rejected attempt costs one bcrypt compare.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZfqkVZ1Y5cJ9bHh6e0eRbK"

// Verifier authenticates a login name and secret against the user directory.
type Verifier struct {
	users          storage.UserStore
	insecureSecret string
	compare        func(hash, password string) error
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithInsecureDevSecret accepts secret for principals that have no stored
// digest. Development only; config.Load refuses it in production.
func WithInsecureDevSecret(secret string) VerifierOption {
	return func(v *Verifier) {
		v.insecureSecret = secret
	}
}

// NewVerifier builds a verifier over the given directory.
func NewVerifier(users storage.UserStore, opts ...VerifierOption) *Verifier {
	v := &Verifier{users: users, compare: VerifyPassword}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify returns the active principal matching loginName when secret is
// correct. Unknown, inactive and wrong-secret attempts all yield
// ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, loginName, secret string) (models.User, error) {
	loginName = strings.TrimSpace(loginName)
	if loginName == "" || strings.TrimSpace(secret) == "" {
		return models.User{}, ErrValidation
	}

	user, err := v.users.FindActiveByLoginName(ctx, loginName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			v.burn(secret)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if !user.Active {
		v.burn(secret)
		return models.User{}, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		v.burn(secret)
		if !v.matchesInsecureSecret(secret) {
			return models.User{}, ErrInvalidCredentials
		}
		return user, nil
	}
	if err := v.compare(user.PasswordHash, secret); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// burn spends one bcrypt compare on paths that have no real digest.
func (v *Verifier) burn(secret string) {
	_ = v.compare(dummyHash, secret)
}

func (v *Verifier) matchesInsecureSecret(secret string) bool {
	if v.insecureSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.insecureSecret), []byte(secret)) == 1
}
