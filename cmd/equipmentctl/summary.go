package main

import (
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals, averages and the type distribution",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	summary, err := client.GetSummary(ctx)
	if err != nil {
		return explain(err)
	}

	printSummary(cmd.OutOrStdout(), summary)
	return nil
}
