// Package cmd provides CLI commands for the recap tool.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recaplabs/recap-cli/client"
	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/credentials"
	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
	"github.com/recaplabs/recap-cli/pkg/history"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
	"github.com/recaplabs/recap-cli/pkg/render"
)

// newLogger builds the command logger from config.
func newLogger(cfg *config.CLIConfig) logging.Logger {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:     level,
		Component: "recap",
	})
}

// NewAPIClient builds the backend client from config, resolving the API
// token from config, keyring, or environment. A missing token is not an
// error; the backend may not require auth.
func NewAPIClient(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *client.APIClient {
	opts := client.DefaultOptions()
	opts.RequestTimeout = cfg.Timeout
	opts.Token = cfg.APIToken
	if opts.Token == "" {
		if token, err := credentials.NewStore().Token(); err == nil {
			opts.Token = token
		}
	}
	return client.New(cfg.BackendURL, opts, log, m)
}

// openHistory opens the meeting history store at the configured path,
// creating the parent directory if needed.
func openHistory(cfg *config.CLIConfig, log logging.Logger) (*history.Store, error) {
	path, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return history.Open(path, log)
}

// resolveOutput picks the output format: the per-command flag wins over the
// config default.
func resolveOutput(cfg *config.CLIConfig, flag string) (config.OutputFormat, error) {
	if flag == "" {
		return cfg.OutputFormat, nil
	}
	format := config.OutputFormat(flag)
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", flag)
	}
	return format, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printYAML writes v as a YAML document.
func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// readTranscript reads the transcript from the given file path, or from
// stdin when path is "-".
func readTranscript(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading transcript from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading transcript file: %w", err)
		}
	}
	transcript := string(data)
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
	}
	return transcript, nil
}

// writeCharts renders the trend line chart and effectiveness gauge into dir.
func writeCharts(trends []analysis.SentimentTrend, score int, dir string) (lineChart, gauge string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("creating charts directory: %w", err)
	}

	lineChart = filepath.Join(dir, "sentiment-trends.png")
	if err := render.LineChart(trends, lineChart); err != nil {
		if errors.Is(err, rerrors.ErrValidation) {
			lineChart = "" // no trend segments to draw
		} else {
			return "", "", err
		}
	}

	gauge = filepath.Join(dir, "effectiveness-gauge.png")
	if err := render.Gauge(score, gauge); err != nil {
		return "", "", err
	}
	return lineChart, gauge, nil
}
