package clients

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the equipmentctl settings file.
type Config struct {
	ServerURL    string `yaml:"server_url"`
	Username     string `yaml:"username,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
}

const DefaultServerURL = "http://localhost:8000"

// DefaultConfigPath returns ~/.equipmentctl.yaml, or a local file when no home dir is known.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".equipmentctl.yaml"
	}
	return filepath.Join(home, ".equipmentctl.yaml")
}

// LoadConfig reads the config file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{ServerURL: DefaultServerURL}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	return cfg, nil
}

// SaveConfig writes the config with owner-only permissions since it holds tokens.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
