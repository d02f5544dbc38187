package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/client"
	"github.com/truccaai/trucca/internal/config"
	"github.com/truccaai/trucca/internal/db"
	"github.com/truccaai/trucca/internal/session"
	"github.com/truccaai/trucca/internal/telemetry"
)

type clientConfig struct {
	configPath string
	baseURL    string
	storage    string
	timeout    time.Duration
}

func addClientFlags(cmd *cobra.Command, cfg *clientConfig) {
	cmd.PersistentFlags().StringVar(&cfg.configPath, "config", "", "config file (default "+config.Dir()+"/config.yaml)")
	cmd.PersistentFlags().StringVar(&cfg.baseURL, "base-url", "", "API base URL (env TRUCCA_BASE_URL)")
	cmd.PersistentFlags().StringVar(&cfg.storage, "storage", "", "local session database (env TRUCCA_STORAGE_PATH)")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 0, "request timeout, 0 for none (env TRUCCA_TIMEOUT)")
}

// app is everything a command needs, opened from flags and config.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	client   *client.Client
	notifier *cliNotifier
	shutdown telemetry.ShutdownFunc
}

func (cfg *clientConfig) open(cmd *cobra.Command) (*app, error) {
	c, err := config.Load(cfg.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.storage != "" {
		c.StoragePath = cfg.storage
	}
	if cfg.timeout > 0 {
		c.Timeout = cfg.timeout
	}

	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	database, err := db.Open(c.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	out := cmd.ErrOrStderr()
	a := &app{
		cfg:      c,
		db:       database,
		notifier: &cliNotifier{w: out},
		shutdown: telemetry.Setup(cmd.Context(), "trucca", c.OTLPEndpoint, log),
	}
	a.client = client.New(client.Options{
		BaseURL:   client.ResolveBaseURL(cfg.baseURL, c.BaseURL),
		Storage:   session.NewSQLiteStorage(database),
		Timeout:   c.Timeout,
		Navigator: &cliNavigator{w: out},
		Logger:    log,
	})
	return a, nil
}

func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.shutdown(ctx)
	return a.db.Close()
}

// errReported marks an error the notifier already printed.
var errReported = errors.New("reported")

type cliNotifier struct {
	w        io.Writer
	reported bool
}

func (n *cliNotifier) Success(msg string) { fmt.Fprintln(n.w, msg) }

func (n *cliNotifier) Error(msg string) {
	fmt.Fprintln(n.w, "error: "+msg)
	n.reported = true
}

// done converts an error the notifier already showed into errReported.
func (a *app) done(err error) error {
	if err != nil && a.notifier.reported {
		return errReported
	}
	return err
}

// cliNavigator turns view changes into hints on stderr.
type cliNavigator struct {
	w io.Writer
}

func (n *cliNavigator) Navigate(path string) {
	switch path {
	case "/login":
		fmt.Fprintln(n.w, "Signed out. Run `trucca login` to sign in again.")
	case "/":
		fmt.Fprintln(n.w, "Signed in.")
	}
}
