package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the equipment report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "pdf", "report format (pdf or xlsx)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default equipment_report.<format>)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportFormat != "pdf" && reportFormat != "xlsx" {
		return fmt.Errorf("unknown format: %s (available: pdf, xlsx)", reportFormat)
	}

	out := reportOut
	if out == "" {
		out = "equipment_report." + reportFormat
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}

	n, err := client.DownloadReport(ctx, reportFormat, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(out)
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", out, humanize.Bytes(uint64(n)))
	return nil
}
