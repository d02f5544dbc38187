// Package fetch performs authenticated HTTP calls against the API.
package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/session"
)

// ErrSessionExpired is returned for any 401 response.
var ErrSessionExpired = errors.New("session expired, please log in again")

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Fetcher sends requests with the session's bearer token attached.
type Fetcher struct {
	BaseURL string
	Session *session.Session
	Client  *http.Client
	Logger  *zap.Logger
}

// Options configures a Fetcher.
type Options struct {
	BaseURL   string
	Session   *session.Session
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// New creates a Fetcher whose transport is instrumented with OpenTelemetry.
// A zero Timeout leaves the runtime default (none) in place.
func New(opts Options) *Fetcher {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		Session: opts.Session,
		Client: &http.Client{
			Transport: otelhttp.NewTransport(base),
			Timeout:   opts.Timeout,
		},
		Logger: logger,
	}
}

// URL resolves an API path against the base URL.
func (f *Fetcher) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return f.BaseURL + path
}

// Do sends req. It adds the bearer token when one is stored. A 401 response
// expires the session and returns ErrSessionExpired; every other response is
// returned as is and the caller must close its body.
func (f *Fetcher) Do(req *http.Request) (*http.Response, error) {
	return f.do(req, true)
}

// DoAnonymous sends req without credentials and without 401 handling. Login
// uses it so that bad credentials are reported as such.
func (f *Fetcher) DoAnonymous(req *http.Request) (*http.Response, error) {
	return f.do(req, false)
}

func (f *Fetcher) do(req *http.Request, authenticated bool) (*http.Response, error) {
	if authenticated && f.Session != nil {
		if tok := f.Session.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := req.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
		req.Header.Set(RequestIDHeader, reqID)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		f.Logger.Debug("request failed",
			logging.Method(req.Method),
			logging.Path(req.URL.Path),
			logging.RequestID(reqID),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	f.Logger.Debug("request completed",
		logging.Method(req.Method),
		logging.Path(req.URL.Path),
		logging.Status(resp.StatusCode),
		logging.RequestID(reqID),
		logging.Duration(time.Since(start)))

	if authenticated && resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if f.Session != nil {
			f.Session.Expire()
		}
		return nil, ErrSessionExpired
	}

	return resp, nil
}
