// Package session holds the client's credentials and the logout hook.
//
// A Session is created once and injected into everything that needs
// credentials; there is no package-level state.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Storage keys.
const (
	AccessTokenKey  = "trucca_access_token"
	RefreshTokenKey = "trucca_refresh_token"
)

// ErrNoExpiry is returned by ExpiresAt when the access token carries no exp claim.
var ErrNoExpiry = errors.New("access token has no expiry")

// Tokens is the credential pair issued at login.
type Tokens struct {
	Access  string
	Refresh string
}

// Session reads and writes credentials through a Storage and runs the
// logout handler when the server rejects them.
type Session struct {
	storage Storage
	logger  *zap.Logger

	mu       sync.Mutex
	onLogout func()
}

// New creates a Session over storage.
func New(storage Storage, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{storage: storage, logger: logger}
}

// OnLogout registers the handler run by Expire. A nil handler unregisters.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = fn
}

// AccessToken returns the stored access token, or "" if none is stored.
func (s *Session) AccessToken() string {
	v, _, err := s.storage.Get(AccessTokenKey)
	if err != nil {
		s.logger.Warn("read access token", zap.Error(err))
		return ""
	}
	return v
}

// Tokens returns both stored tokens.
func (s *Session) Tokens() (Tokens, error) {
	access, _, err := s.storage.Get(AccessTokenKey)
	if err != nil {
		return Tokens{}, fmt.Errorf("read access token: %w", err)
	}
	refresh, _, err := s.storage.Get(RefreshTokenKey)
	if err != nil {
		return Tokens{}, fmt.Errorf("read refresh token: %w", err)
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

// Authenticated reports whether an access token is stored.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// Save stores both tokens. An empty refresh token leaves the stored one untouched.
func (s *Session) Save(t Tokens) error {
	if err := s.storage.Set(AccessTokenKey, t.Access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if t.Refresh == "" {
		return nil
	}
	if err := s.storage.Set(RefreshTokenKey, t.Refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (s *Session) Clear() error {
	return multierr.Append(
		s.storage.Delete(AccessTokenKey),
		s.storage.Delete(RefreshTokenKey),
	)
}

// Expire clears both tokens and runs the logout handler. It is called when
// the server answers 401.
func (s *Session) Expire() {
	if err := s.Clear(); err != nil {
		s.logger.Error("clear expired session", zap.Error(err))
	}

	s.mu.Lock()
	fn := s.onLogout
	s.mu.Unlock()

	s.logger.Info("session expired")
	if fn != nil {
		fn()
	}
}

// ExpiresAt reads the exp claim of the access token. The signature is not
// verified: only the server can do that.
func (s *Session) ExpiresAt() (time.Time, error) {
	tok := s.AccessToken()
	if tok == "" {
		return time.Time{}, ErrNoExpiry
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// Subject returns the sub claim of the access token, or "" when unavailable.
func (s *Session) Subject() string {
	tok := s.AccessToken()
	if tok == "" {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	return claims.Subject
}
