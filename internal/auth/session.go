// Package auth derives the local session state from the stored JWT.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingToken is returned when no token has been stored yet.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// Claims is the payload extracted from the session JWT.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// ParseClaims decodes the token without verifying its signature: the token
// was issued by the remote service and only the server can verify it. The
// engine just needs the subject and expiry to decide whether it is
// authorized.
func ParseClaims(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	return &Claims{UserID: subject, ExpiresAt: exp.Time}, nil
}

// Session holds the current bearer token and exposes it to the API client.
// Safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
}

// NewSession constructs an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// SetToken installs a new token, replacing any previous one.
func (s *Session) SetToken(token string) error {
	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.mu.Unlock()
	return nil
}

// Clear drops the stored token.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.claims = nil
	s.mu.Unlock()
}

// Token implements api.TokenSource.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrMissingToken
	}
	return s.token, nil
}

// UserID returns the authenticated user id, or "" when signed out.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.UserID
}

// IsAuthorized reports whether a non-expired token is present.
func (s *Session) IsAuthorized(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims != nil && now.Before(s.claims.ExpiresAt)
}
