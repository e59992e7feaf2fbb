package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/cabot-property-api/internal/models"
)

var tenant = models.User{ID: 1, Username: "tenant1", Email: "tenant@cabot.com", Role: models.RoleTenant}

func TestIssueValidateRoundTrip(t *testing.T) {
	t.Parallel()

	tokens := NewTokenManager("super-secret", "cabot-property-management", 24*time.Hour)
	tok, err := tokens.Issue(tenant)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected three-part compact token, got %q", tok)
	}

	claims, err := tokens.Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.UserID != tenant.ID || claims.Username != tenant.Username || claims.Email != tenant.Email || claims.Role != tenant.Role {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Subject != "1" {
		t.Fatalf("subject = %q, want 1", claims.Subject)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Fatalf("expiry window = %s, want 24h", got)
	}
}

func TestValidateExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenManager("secret", "", 24*time.Hour, WithClock(func() time.Time { return now }))
	tok, err := issuer.Issue(tenant)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	later := NewTokenManager("secret", "", 24*time.Hour, WithClock(func() time.Time { return now.Add(24 * time.Hour) }))
	_, err = later.Validate(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expired token error should be unauthenticated, got %v", err)
	}

	justBefore := NewTokenManager("secret", "", 24*time.Hour, WithClock(func() time.Time { return now.Add(24*time.Hour - time.Second) }))
	if _, err := justBefore.Validate(tok); err != nil {
		t.Fatalf("token should still be valid one second before expiry: %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("right-secret", "", time.Hour).Issue(tenant)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	_, err = NewTokenManager("wrong-secret", "", time.Hour).Validate(tok)
	if !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestValidateMalformed(t *testing.T) {
	t.Parallel()

	tokens := NewTokenManager("k", "", time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "garbage"} {
		if _, err := tokens.Validate(raw); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("Validate(%q) = %v, want ErrMalformedToken", raw, err)
		}
	}
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{UserID: 1, Role: models.RoleManager, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenManager("k", "", time.Hour).Validate(tok); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for HS512, got %v", err)
	}
}

func TestValidateAcceptsLegacyPayload(t *testing.T) {
	t.Parallel()

	// Tokens from the previous deployment carry only userId/email/role plus iat/exp.
	legacy := jwt.MapClaims{
		"userId": 1,
		"email":  "tenantbase@example.com",
		"role":   "tenant",
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, legacy).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := NewTokenManager("k", "issuer", time.Hour).Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.UserID != 1 || claims.Role != models.RoleTenant {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExtractBearer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "Basic dXNlcjpwYXNz", wantErr: true},
		{header: "bearer abc", wantErr: true},
		{header: "Bearerabc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ExtractBearer(tc.header)
		if tc.wantErr {
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("ExtractBearer(%q) err = %v, want ErrUnauthenticated", tc.header, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ExtractBearer(%q) = %q, %v", tc.header, got, err)
		}
	}
}
