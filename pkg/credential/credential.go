package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when no session token is available.
var ErrNoToken = errors.New("no session token available")

// Source yields the opaque dashboard session token. Refresh re-resolves it
// from the backing store after an authentication failure.
type Source interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticSource serves a fixed token from configuration or the environment.
// Refresh re-yields the same token since a static store cannot mint new ones.
type StaticSource struct {
	token string
}

// NewStaticSource creates a StaticSource.
func NewStaticSource(token string) *StaticSource {
	return &StaticSource{token: token}
}

// Token returns the configured token.
func (s *StaticSource) Token(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Refresh returns the configured token again.
func (s *StaticSource) Refresh(ctx context.Context) (string, error) {
	return s.Token(ctx)
}

// SubjectID derives the stable subject identifier embedded in a session
// token. The token is either "<userID>%3A%3A<jwt>" (cookie form) or a bare
// JWT; the subject claim carries an "issuer|id" pair of which only the id is
// stable across credential renewal. The signature is deliberately not
// verified: the caller only needs a cache key, not trust.
func SubjectID(token string) (string, error) {
	raw := token
	for _, sep := range []string{"%3A%3A", "::"} {
		if i := strings.LastIndex(raw, sep); i >= 0 {
			raw = raw[i+len(sep):]
		}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("decode session token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("session token has no subject claim")
	}
	if i := strings.LastIndex(sub, "|"); i >= 0 {
		sub = sub[i+1:]
	}
	if sub == "" {
		return "", fmt.Errorf("session token subject is empty")
	}
	return sub, nil
}
