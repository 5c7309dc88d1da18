// Package main provides the recap CLI entry point.
// recap analyzes meeting transcripts through an LLM-backed REST backend:
// summary, sentiment, and coaching feedback, plus follow-up Q&A.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recaplabs/recap-cli/cmd"
	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/pkg/buildinfo"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
)

// Global flags and state.
var (
	backendURL   string
	timeout      time.Duration
	outputFormat string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "recap - meeting transcript analysis",
	Long: `recap analyzes meeting transcripts for summaries, sentiment, and
meeting-effectiveness coaching, and answers follow-up questions about them.

Transcripts are sent to an analysis backend; results are rendered as a
terminal dashboard, machine-readable JSON/YAML, or PNG charts, and recorded
in a local searchable history.

COMMON WORKFLOWS:
  Analyze a meeting:   recap analyze standup.txt
  Ask about it:        recap chat standup.txt -q "what was decided?"
  Browse past runs:    recap history list  →  recap history show <id>
  Team trends:         recap report --days 30
  Automate a folder:   recap watch ~/meetings/inbox

DISCOVERY:
  recap <command> --help   Subcommands, flags, and examples for any command
  recap status             Backend connectivity check
  recap config show        Effective configuration`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it.
		switch c.Name() {
		case "version", "help", "completion", "init":
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Command-line flags override file and environment.
		if backendURL != "" {
			cfg.BackendURL = backendURL
		}
		if timeout != 0 {
			cfg.Timeout = timeout
		}
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}
		return cfg.Validate()
	},
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get()
		out := c.OutOrStdout()
		fmt.Fprintf(out, "recap version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
		fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:      %s\n", info.GoVersion)
		return nil
	},
}

// statusCmd checks backend reachability.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the analysis backend",
	RunE: func(c *cobra.Command, args []string) error {
		log := logging.NewNopLogger()
		if cfg.Debug {
			log = logging.NewLogger(&logging.Config{Level: logging.LevelDebug, Component: "recap"})
		}
		apiClient := cmd.NewAPIClient(cfg, log, metrics.Nop())

		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()

		out := c.OutOrStdout()
		if err := apiClient.Ping(ctx); err != nil {
			fmt.Fprintf(out, "Backend %s: unreachable (%v)\n", cfg.BackendURL, err)
			return err
		}
		fmt.Fprintf(out, "Backend %s: reachable\n", cfg.BackendURL)
		return nil
	},
}

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(c *cobra.Command, args []string) error {
		out := c.OutOrStdout()
		fmt.Fprintf(out, "backend_url:   %s\n", cfg.BackendURL)
		fmt.Fprintf(out, "timeout:       %s\n", cfg.Timeout)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)

		dbPath, err := cfg.HistoryDBPath()
		if err == nil {
			fmt.Fprintf(out, "history_db:    %s\n", dbPath)
		}
		if cfg.ChartsDir != "" {
			fmt.Fprintf(out, "charts_dir:    %s\n", cfg.ChartsDir)
		}
		fmt.Fprintf(out, "debug:         %t\n", cfg.Debug)

		if path, err := config.ConfigPath(); err == nil {
			fmt.Fprintf(out, "\nconfig file:   %s\n", path)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(c *cobra.Command, args []string) error {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return err
		}
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Analysis backend base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "", "Default output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(cmd.NewAnalyzeCommand(nil))
	rootCmd.AddCommand(cmd.NewChatCommand(nil))
	rootCmd.AddCommand(cmd.NewHistoryCommand(nil))
	rootCmd.AddCommand(cmd.NewReportCommand(nil))
	rootCmd.AddCommand(cmd.NewWatchCommand(nil))
	rootCmd.AddCommand(cmd.NewAuthCommand(nil))
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
