package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chemequip/internal/clients"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "equipmentctl",
	Short: "Upload and inspect chemical equipment readings",
	Long: `equipmentctl talks to the chemical equipment API: it uploads CSV files of
equipment readings, prints the stored readings, summary and upload history,
and downloads PDF or XLSX reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.equipmentctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (overrides the config file)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "request timeout")
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return clients.DefaultConfigPath()
}

func loadConfig() (*clients.Config, error) {
	cfg, err := clients.LoadConfig(getConfigPath())
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	return cfg, nil
}

func saveConfig(cfg *clients.Config) error {
	return clients.SaveConfig(getConfigPath(), cfg)
}

// newClient builds an API client using the stored access token.
func newClient() (clients.EquipmentClient, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return clients.NewEquipmentClient(cfg.ServerURL, cfg.AccessToken), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// explain adds a login hint to authentication failures.
func explain(err error) error {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w (run 'equipmentctl login' first)", err)
	}
	return err
}
