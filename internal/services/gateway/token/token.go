// Package token mints and verifies the gateway's bearer access tokens.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/blizx/zenith/internal/platform/errors"
)

// Issuer identifies tokens minted by this gateway.
const Issuer = "zenith-gateway"

// DefaultTTL is how long a minted session stays valid.
const DefaultTTL = 24 * time.Hour

// Claims are the verified contents of an access token.
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Minter signs and verifies HS256 session tokens.
type Minter struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates a minter with the given signing secret. A zero ttl falls back
// to DefaultTTL; a nil now falls back to time.Now.
func New(secret []byte, ttl time.Duration, now func() time.Time) (*Minter, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Minter{secret: secret, ttl: ttl, now: now}, nil
}

// Mint signs a token for the given user.
func (m *Minter) Mint(userID, email string) (string, error) {
	issuedAt := m.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token.
func (m *Minter) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, apperrors.New(apperrors.CodeAuthSessionMissing, "access token is required")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(func() time.Time { return m.now().UTC() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperrors.Wrap(apperrors.CodeAuthSessionExpired, "session expired", err)
		}
		return Claims{}, apperrors.Wrap(apperrors.CodeAuthSessionMissing, "invalid access token", err)
	}
	if parsed.Subject == "" {
		return Claims{}, apperrors.New(apperrors.CodeAuthSessionMissing, "token has no subject")
	}

	return Claims{
		UserID:    parsed.Subject,
		Email:     parsed.Email,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
