package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername string
	loginPassword string
	refreshOnly   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain API tokens and store them in the config file",
	Long: `Exchanges a username and password for an access and refresh token pair.
With --refresh the stored refresh token is used to obtain a new access token instead.
The password is read from stdin when --password is not given.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account name (default from config, then admin)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	loginCmd.Flags().BoolVar(&refreshOnly, "refresh", false, "renew the access token with the stored refresh token")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	if refreshOnly {
		if cfg.RefreshToken == "" {
			return fmt.Errorf("no refresh token stored, run 'equipmentctl login' first")
		}
		access, err := client.RefreshAccess(ctx, cfg.RefreshToken)
		if err != nil {
			return fmt.Errorf("refreshing token: %w", err)
		}
		cfg.AccessToken = access
		if err := saveConfig(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed")
		return nil
	}

	username := loginUsername
	if username == "" {
		username = cfg.Username
	}
	if username == "" {
		username = "admin"
	}

	password := loginPassword
	if password == "" {
		password, err = promptPassword(os.Stdin, cmd.ErrOrStderr(), username)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	pair, err := client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	cfg.Username = username
	cfg.AccessToken = pair.Access
	cfg.RefreshToken = pair.Refresh
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", cfg.ServerURL, username)
	return nil
}

// promptPassword reads without echo from a terminal and falls back to a plain
// line read when input is piped.
func promptPassword(in *os.File, prompt io.Writer, username string) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(prompt, "Password for %s: ", username)
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
