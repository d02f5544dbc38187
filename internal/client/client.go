// Package client wires the session, fetcher, cache and every resource
// service of the operations API into one value.
package client

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/auth"
	"github.com/truccaai/trucca/internal/cache"
	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/fetch"
	"github.com/truccaai/trucca/internal/logging"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/resource"
	"github.com/truccaai/trucca/internal/session"
)

// DefaultBaseURL is set at build time:
//
//	go build -ldflags "-X github.com/truccaai/trucca/internal/client.DefaultBaseURL=https://ops.example.com"
var DefaultBaseURL = ""

// FallbackBaseURL is the reverse proxy serving /api next to the dashboard.
const FallbackBaseURL = "http://localhost"

// ResolveBaseURL returns the first non-empty of explicit, configured,
// DefaultBaseURL and FallbackBaseURL, without a trailing slash.
func ResolveBaseURL(explicit, configured string) string {
	for _, u := range []string{explicit, configured, DefaultBaseURL} {
		if u = strings.TrimSpace(u); u != "" {
			return strings.TrimRight(u, "/")
		}
	}
	return FallbackBaseURL
}

type Options struct {
	BaseURL   string
	Storage   session.Storage // nil keeps tokens in memory
	Timeout   time.Duration
	Transport http.RoundTripper
	Navigator auth.Navigator
	Logger    *zap.Logger
}

type Client struct {
	BaseURL string
	Session *session.Session
	Fetcher *fetch.Fetcher
	Cache   *cache.Cache
	Auth    *auth.Service

	Systems         *resource.Service[models.System]
	Contacts        *resource.Service[models.Contact]
	Groups          *resource.Service[models.Group]
	AlertRules      *resource.Service[models.AlertRule]
	Departments     *resource.Service[models.Department]
	Roles           *resource.Service[models.Role]
	SystemCatalog   *resource.Service[models.SystemCatalog]
	SysSeverities   *resource.Service[models.SysSeverity]
	OperationTypes  *resource.Service[models.OperationType]
	ErrorDictionary *resource.Service[models.ErrorDictionary]
	Logs            *resource.Service[models.LogEntry]
	Schedules       *resource.Service[models.Schedule]
	Alerts          *resource.AlertService
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	storage := opts.Storage
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	baseURL := ResolveBaseURL(opts.BaseURL, "")

	sess := session.New(storage, logger.With(logging.Component("session")))
	f := fetch.New(fetch.Options{
		BaseURL:   baseURL,
		Session:   sess,
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
		Logger:    logger.With(logging.Component("fetch")),
	})

	return &Client{
		BaseURL: baseURL,
		Session: sess,
		Fetcher: f,
		Cache:   cache.New(logger),
		Auth:    auth.New(f, sess, opts.Navigator, logger),

		Systems:         resource.New[models.System](endpoints.Systems, f, logger),
		Contacts:        resource.New[models.Contact](endpoints.Contacts, f, logger),
		Groups:          resource.New[models.Group](endpoints.Groups, f, logger),
		AlertRules:      resource.New[models.AlertRule](endpoints.AlertRules, f, logger),
		Departments:     resource.New[models.Department](endpoints.Departments, f, logger),
		Roles:           resource.New[models.Role](endpoints.Roles, f, logger),
		SystemCatalog:   resource.New[models.SystemCatalog](endpoints.SystemCatalog, f, logger),
		SysSeverities:   resource.New[models.SysSeverity](endpoints.SysSeverities, f, logger),
		OperationTypes:  resource.New[models.OperationType](endpoints.OperationTypes, f, logger),
		ErrorDictionary: resource.New[models.ErrorDictionary](endpoints.ErrorDictionary, f, logger),
		Logs:            resource.New[models.LogEntry](endpoints.Logs, f, logger),
		Schedules:       resource.New[models.Schedule](endpoints.Schedules, f, logger),
		Alerts:          resource.NewAlerts(f, logger),
	}
}
