package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/truccaai/trucca/internal/client"
	"github.com/truccaai/trucca/internal/endpoints"
	"github.com/truccaai/trucca/internal/models"
	"github.com/truccaai/trucca/internal/resource"
)

func alertCommand() *cobra.Command {
	return resourceCommand(resourceDef[models.Alert]{
		res: endpoints.Alerts, short: "Raised alerts and acknowledgment",
		service: func(c *client.Client) *resource.Service[models.Alert] { return c.Alerts.Service },
		columns: alertColumns, row: alertRow,
		extra: func(cfg *clientConfig) []*cobra.Command { return []*cobra.Command{ackCmd(cfg)} },
	})
}

func ackCmd(cfg *clientConfig) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "ack <id>...",
		Short: "Acknowledge alerts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cfg.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ids := models.IDs(args...)
			if err := a.client.Alerts.Acknowledge(cmd.Context(), ids, note); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d alert(s) acknowledged\n", len(ids))
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "acknowledgment note")
	return cmd
}
