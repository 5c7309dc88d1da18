// Package config provides CLI configuration management for the recap
// command-line tool. It supports loading configuration from a YAML file,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultBackendURL    = "http://localhost:8000/api"
	DefaultTimeout       = 2 * time.Minute
	DefaultOutputFormat  = OutputFormatText
	DefaultConfigDir     = ".recap"
	DefaultConfigFile    = "config.yaml"
	DefaultHistoryDBFile = "meetings.db"
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// BackendURL is the base URL of the analysis backend, including any
	// path prefix (e.g. http://localhost:8000/api).
	BackendURL string `yaml:"backend_url"`

	// APIToken is the static bearer token sent on backend requests.
	// Usually supplied via keyring or RECAP_API_TOKEN rather than the file.
	APIToken string `yaml:"api_token,omitempty"`

	// Timeout is the per-request timeout for backend calls.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// HistoryDB is the path to the local meeting history database.
	// Defaults to ~/.recap/meetings.db.
	HistoryDB string `yaml:"history_db,omitempty"`

	// ChartsDir is the directory chart PNGs are written to.
	// Empty disables chart output unless overridden per command.
	ChartsDir string `yaml:"charts_dir,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		BackendURL:   DefaultBackendURL,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $RECAP_CONFIG_DIR if set, otherwise ~/.recap
func ConfigDir() (string, error) {
	if dir := os.Getenv("RECAP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.recap/config.yaml or $RECAP_CONFIG_DIR/config.yaml)
// 3. Environment variables (RECAP_BACKEND_URL, RECAP_API_TOKEN, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling duration as string.
	type configFile struct {
		BackendURL   string       `yaml:"backend_url"`
		APIToken     string       `yaml:"api_token"`
		Timeout      string       `yaml:"timeout"`
		OutputFormat OutputFormat `yaml:"output_format"`
		HistoryDB    string       `yaml:"history_db"`
		ChartsDir    string       `yaml:"charts_dir"`
		Debug        bool         `yaml:"debug"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.BackendURL != "" {
		cfg.BackendURL = fileCfg.BackendURL
	}
	if fileCfg.APIToken != "" {
		cfg.APIToken = fileCfg.APIToken
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.HistoryDB != "" {
		cfg.HistoryDB = fileCfg.HistoryDB
	}
	if fileCfg.ChartsDir != "" {
		cfg.ChartsDir = fileCfg.ChartsDir
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("RECAP_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}

	if v := os.Getenv("RECAP_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}

	if v := os.Getenv("RECAP_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("RECAP_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("RECAP_HISTORY_DB"); v != "" {
		cfg.HistoryDB = v
	}

	if v := os.Getenv("RECAP_CHARTS_DIR"); v != "" {
		cfg.ChartsDir = v
	}

	if v := os.Getenv("RECAP_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}

	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend_url: %q", c.BackendURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// HistoryDBPath returns the configured history database path, defaulting to
// <config dir>/meetings.db.
func (c *CLIConfig) HistoryDBPath() (string, error) {
	if c.HistoryDB != "" {
		return ExpandPath(c.HistoryDB)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultHistoryDBFile), nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
// The API token is never written to disk; it lives in the keyring or env.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// Convert to YAML-friendly format with duration as string.
	type configFile struct {
		BackendURL   string       `yaml:"backend_url"`
		Timeout      string       `yaml:"timeout"`
		OutputFormat OutputFormat `yaml:"output_format"`
		HistoryDB    string       `yaml:"history_db,omitempty"`
		ChartsDir    string       `yaml:"charts_dir,omitempty"`
		Debug        bool         `yaml:"debug,omitempty"`
	}

	fileCfg := configFile{
		BackendURL:   cfg.BackendURL,
		Timeout:      cfg.Timeout.String(),
		OutputFormat: cfg.OutputFormat,
		HistoryDB:    cfg.HistoryDB,
		ChartsDir:    cfg.ChartsDir,
		Debug:        cfg.Debug,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
