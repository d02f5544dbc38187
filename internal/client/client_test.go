package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/truccaai/trucca/internal/auth"
	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/fetch"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/session"
)

func TestResolveBaseURL(t *testing.T) {
	old := DefaultBaseURL
	t.Cleanup(func() { DefaultBaseURL = old })

	DefaultBaseURL = ""
	if got := ResolveBaseURL("", ""); got != FallbackBaseURL {
		t.Errorf("fallback = %q", got)
	}
	DefaultBaseURL = "https://built.example.com/"
	if got := ResolveBaseURL("", ""); got != "https://built.example.com" {
		t.Errorf("build default = %q", got)
	}
	if got := ResolveBaseURL("", "https://cfg.example.com"); got != "https://cfg.example.com" {
		t.Errorf("configured = %q", got)
	}
	if got := ResolveBaseURL(" https://flag.example.com/ ", "https://cfg.example.com"); got != "https://flag.example.com" {
		t.Errorf("explicit = %q", got)
	}
}

func TestUnauthorizedFromAnyResourceLogsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctx := context.Background()
	p := endpoints.ListParams{Page: 1, Limit: 10}

	calls := map[string]func(c *Client) error{
		"system":           func(c *Client) error { _, err := c.Systems.GetAll(ctx, p); return err },
		"contact":          func(c *Client) error { _, err := c.Contacts.GetAll(ctx, p); return err },
		"group":            func(c *Client) error { _, err := c.Groups.GetAll(ctx, p); return err },
		"alert-rule":       func(c *Client) error { _, err := c.AlertRules.GetAll(ctx, p); return err },
		"department":       func(c *Client) error { _, err := c.Departments.GetAll(ctx, p); return err },
		"role":             func(c *Client) error { _, err := c.Roles.GetAll(ctx, p); return err },
		"system-catalog":   func(c *Client) error { _, err := c.SystemCatalog.GetAll(ctx, p); return err },
		"sys-severity":     func(c *Client) error { _, err := c.SysSeverities.GetAll(ctx, p); return err },
		"operation-type":   func(c *Client) error { _, err := c.OperationTypes.GetAll(ctx, p); return err },
		"error-dictionary": func(c *Client) error { _, err := c.ErrorDictionary.GetAll(ctx, p); return err },
		"log":              func(c *Client) error { _, err := c.Logs.GetAll(ctx, p); return err },
		"schedule":         func(c *Client) error { _, err := c.Schedules.GetAll(ctx, p); return err },
		"alert":            func(c *Client) error { return c.Alerts.Acknowledge(ctx, models.IDs("1"), "") },
		"detail":           func(c *Client) error { _, err := c.Departments.GetByID(ctx, "1"); return err },
		"create":           func(c *Client) error { _, err := c.Contacts.Create(ctx, models.ContactInput{}); return err },
		"delete":           func(c *Client) error { return c.Roles.Delete(ctx, models.IDs("1")) },
		"export":           func(c *Client) error { _, err := c.Groups.ExportToExcel(ctx, nil); return err },
		"profile":          func(c *Client) error { _, err := c.Auth.Profile(ctx); return err },
	}
	if len(calls) < len(endpoints.All()) {
		t.Fatalf("only %d calls for %d resources", len(calls), len(endpoints.All()))
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var navs []string
			c := New(Options{
				BaseURL:   srv.URL,
				Navigator: auth.NavigatorFunc(func(p string) { navs = append(navs, p) }),
			})
			_ = c.Session.Save(session.Tokens{Access: "t1", Refresh: "r1"})

			if err := call(c); !errors.Is(err, fetch.ErrSessionExpired) {
				t.Fatalf("err = %v, want ErrSessionExpired", err)
			}
			toks, _ := c.Session.Tokens()
			if toks.Access != "" || toks.Refresh != "" {
				t.Errorf("tokens not cleared: %+v", toks)
			}
			if len(navs) != 1 || navs[0] != auth.LoginPath {
				t.Errorf("navigations = %v, want one to %s", navs, auth.LoginPath)
			}
		})
	}
}

func TestNewWiresSharedSession(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":{"content":[],"totalElements":0,"currentPage":0,"pageSize":10}}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStorage()
	_ = store.Set(session.AccessTokenKey, "persisted")
	c := New(Options{BaseURL: srv.URL + "/", Storage: store})

	if c.BaseURL != srv.URL {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
	page, err := c.Roles.GetAll(context.Background(), endpoints.ListParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if page.Page != 1 || page.Total != 0 {
		t.Errorf("page = %+v", page)
	}
	if gotAuth != "Bearer persisted" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
