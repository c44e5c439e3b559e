package main

import (
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent uploads",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	history, err := client.GetHistory(ctx)
	if err != nil {
		return explain(err)
	}

	printHistory(cmd.OutOrStdout(), history, time.Now())
	return nil
}
