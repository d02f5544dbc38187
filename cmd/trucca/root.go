package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/truccaai/trucca/internal/logging"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "trucca",
	Short: "Client for the Trực Ca AI operations API",
	Long: `trucca manages the on-call operations records served by the Trực Ca AI
API: systems, contacts, groups, alert rules, departments, roles, catalogs,
schedules and alerts. Every resource supports list, get, create, update,
delete, copy, export, import and template.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.FromEnv())
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logging.Sync(logger)
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error: "+err.Error())
		}
		stop()
		os.Exit(1)
	}
}
