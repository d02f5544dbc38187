package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/truccaai/trucca/internal/db"
)

var downloadsFlags struct {
	clientConfig
	resource string
	limit    int
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "List exported files and templates saved by this client",
	Args:  cobra.NoArgs,
	RunE:  runDownloads,
}

func init() {
	rootCmd.AddCommand(downloadsCmd)

	addClientFlags(downloadsCmd, &downloadsFlags.clientConfig)
	downloadsCmd.Flags().StringVarP(&downloadsFlags.resource, "resource", "r", "", "only this resource")
	downloadsCmd.Flags().IntVar(&downloadsFlags.limit, "limit", 20, "maximum rows")
}

func runDownloads(cmd *cobra.Command, args []string) error {
	a, err := downloadsFlags.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := db.ListDownloads(a.db, downloadsFlags.resource, downloadsFlags.limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, d := range list {
		rows = append(rows, []string{
			fmt.Sprint(d.ID),
			formatUnix(d.CreatedAt),
			d.Resource,
			d.Kind,
			formatSize(d.Size),
			d.Filename,
		})
	}
	printTable(cmd.OutOrStdout(), []string{"ID", "SAVED", "RESOURCE", "KIND", "SIZE", "FILE"}, rows)
	return nil
}
