package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV file of equipment readings",
	Long:  `Uploads a CSV file. The stored readings are replaced by the rows of this file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := client.Upload(ctx, filepath.Base(path), file)
	if err != nil {
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s records from %s)\n",
		filepath.Base(path), result.Message,
		humanize.Comma(int64(result.TotalRecords)), humanize.Bytes(uint64(info.Size())))
	return nil
}
