// Package auth signs the user in and out of the operations API.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/fetch"
	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/session"
	"github.com/truccaai/trucca/internal/types"
	"github.com/truccaai/trucca/internal/validate"
)

// Navigation targets.
const (
	RootPath  = "/"
	LoginPath = "/login"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoToken            = errors.New("login response carried no token")
	ErrNoRefreshToken     = errors.New("no refresh token stored")
)

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type Service struct {
	fetcher *fetch.Fetcher
	session *session.Session
	nav     Navigator
	logger  *zap.Logger
}

// New creates the auth service and makes an expired session navigate to
// the login view.
func New(f *fetch.Fetcher, sess *session.Session, nav Navigator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	s := &Service{fetcher: f, session: sess, nav: nav, logger: logger.With(logging.Component("auth"))}
	sess.OnLogout(func() { s.nav.Navigate(LoginPath) })
	return s
}

// Login exchanges credentials for tokens, stores them and navigates to the root view.
func (s *Service) Login(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	in := types.LoginRequest{Username: username, Password: password}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	body, status, err := s.post(ctx, endpoints.AuthLogin, in, "")
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, credentialsError(body)
	}
	lr, err := decodeTokens(body, status)
	if err != nil {
		return nil, err
	}

	if err := s.session.Save(session.Tokens{Access: lr.Token, Refresh: lr.RefreshToken}); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", zap.String("username", username))
	s.nav.Navigate(RootPath)
	return lr, nil
}

// Logout tells the server to end the session, then clears local tokens and
// navigates to the login view. The server call is best effort.
func (s *Service) Logout(ctx context.Context) error {
	if tok := s.session.AccessToken(); tok != "" {
		if _, status, err := s.post(ctx, endpoints.AuthLogout, nil, tok); err != nil {
			s.logger.Warn("server logout failed", zap.Error(err))
		} else if status >= 300 {
			s.logger.Warn("server logout rejected", logging.Status(status))
		}
	}
	if err := s.session.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("logged out")
	s.nav.Navigate(LoginPath)
	return nil
}

// Refresh trades the stored refresh token for a new pair. A rejected
// refresh token expires the session.
func (s *Service) Refresh(ctx context.Context) (*types.LoginResponse, error) {
	toks, err := s.session.Tokens()
	if err != nil {
		return nil, err
	}
	if toks.Refresh == "" {
		return nil, ErrNoRefreshToken
	}

	body, status, err := s.post(ctx, endpoints.AuthRefresh, types.RefreshRequest{RefreshToken: toks.Refresh}, "")
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		s.session.Expire()
		return nil, fetch.ErrSessionExpired
	}
	lr, err := decodeTokens(body, status)
	if err != nil {
		return nil, err
	}
	if err := s.session.Save(session.Tokens{Access: lr.Token, Refresh: lr.RefreshToken}); err != nil {
		return nil, err
	}
	s.logger.Debug("tokens refreshed")
	return lr, nil
}

// Profile returns the signed-in user.
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.fetcher.URL(endpoints.AuthProfile), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	env, err := types.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if resp.StatusCode >= 300 || env.Failed() {
		return nil, fmt.Errorf("profile: %s", messageOr(env.Message, resp.StatusCode))
	}
	var u models.User
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

// post sends an anonymous JSON request so that a 401 is reported to the
// caller rather than expiring the session. bearer, when set, is attached
// explicitly.
func (s *Service) post(ctx context.Context, path string, payload any, bearer string) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.fetcher.URL(path), body)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := s.fetcher.DoAnonymous(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

// decodeTokens reads the token pair from the envelope's data, falling back
// to the top level of the body.
func decodeTokens(body []byte, status int) (*types.LoginResponse, error) {
	env, err := types.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if status < 200 || status > 299 || env.Failed() {
		return nil, errors.New(messageOr(env.Message, status))
	}

	var lr types.LoginResponse
	if env.HasData() {
		_ = json.Unmarshal(env.Data, &lr)
	}
	if lr.Token == "" {
		_ = json.Unmarshal(body, &lr)
	}
	if lr.Token == "" {
		return nil, ErrNoToken
	}
	return &lr, nil
}

func credentialsError(body []byte) error {
	if env, err := types.Parse(body); err == nil && env.Message != "" {
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, env.Message)
	}
	return ErrInvalidCredentials
}

func messageOr(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("request failed with status %d", status)
}
