package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/pkg/history"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/render"
)

// History command flags.
var (
	historyOutput    string
	historyListLimit int
	historySearchMax int
	historyShowFull  bool
)

// HistoryCommandDeps holds the dependencies for history commands.
type HistoryCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	OpenStore  func(cfg *config.CLIConfig, log logging.Logger) (*history.Store, error)
}

// DefaultHistoryDeps returns the default dependencies for production use.
func DefaultHistoryDeps() *HistoryCommandDeps {
	return &HistoryCommandDeps{
		LoadConfig: config.LoadConfig,
		OpenStore:  openHistory,
	}
}

// NewHistoryCommand creates the root history command with all subcommands.
func NewHistoryCommand(deps *HistoryCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultHistoryDeps()
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the local meeting history",
		Long: `Browse meetings recorded by previous analyze runs.

Meetings are stored in a local SQLite database (default ~/.recap/meetings.db)
with a full-text index over titles, transcripts, and summaries.

Examples:
  # List the ten most recent meetings
  recap history list

  # Show one meeting's full analysis
  recap history show 4f3a9c21e801

  # Full-text search across stored meetings
  recap history search "budget concerns"

  # Remove a stored meeting
  recap history delete 4f3a9c21e801`,
	}

	cmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", "", "Output format: text, json, yaml")

	cmd.AddCommand(newHistoryListCommand(deps))
	cmd.AddCommand(newHistoryShowCommand(deps))
	cmd.AddCommand(newHistorySearchCommand(deps))
	cmd.AddCommand(newHistoryDeleteCommand(deps))

	return cmd
}

// historyStore loads config and opens the store for a subcommand run.
func historyStore(deps *HistoryCommandDeps) (*config.CLIConfig, *history.Store, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	store, err := deps.OpenStore(cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("opening meeting history: %w", err)
	}
	return cfg, store, nil
}

func newHistoryListCommand(deps *HistoryCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := historyStore(deps)
			if err != nil {
				return err
			}
			defer store.Close()

			meetings, err := store.Recent(cmd.Context(), historyListLimit)
			if err != nil {
				return err
			}
			return printMeetingList(cmd, cfg, meetings)
		},
	}
	cmd.Flags().IntVarP(&historyListLimit, "limit", "l", 10, "Maximum number of meetings to list")
	return cmd
}

func newHistoryShowCommand(deps *HistoryCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show one meeting's stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := historyStore(deps)
			if err != nil {
				return err
			}
			defer store.Close()

			meeting, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			outputFormat, err := resolveOutput(cfg, historyOutput)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case config.OutputFormatJSON:
				return printJSON(out, meeting)
			case config.OutputFormatYAML:
				return printYAML(out, meeting)
			default:
				fmt.Fprintf(out, "%s  %s\n", meeting.ID, meeting.Title)
				fmt.Fprintf(out, "Date:         %s\n", meeting.Date.Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "Participants: %s\n", strings.Join(meeting.Participants, ", "))
				if meeting.MeetingType != "" {
					fmt.Fprintf(out, "Type:         %s\n", meeting.MeetingType)
				}
				if len(meeting.Tags) > 0 {
					fmt.Fprintf(out, "Tags:         %s\n", strings.Join(meeting.Tags, ", "))
				}
				fmt.Fprintln(out)

				dash := render.NewDashboard(nil)
				dash.RenderSummary(meeting.Summary)
				dash.RenderSentiment(meeting.Sentiment)
				dash.RenderCoaching(meeting.Coaching)
				if _, err := dash.WriteTo(out); err != nil {
					return err
				}

				if historyShowFull {
					fmt.Fprintln(out, "Transcript")
					fmt.Fprintln(out, "──────────")
					fmt.Fprintln(out, meeting.Transcript)
				}
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&historyShowFull, "full", false, "Include the stored transcript")
	return cmd
}

func newHistorySearchCommand(deps *HistoryCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across stored meetings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := historyStore(deps)
			if err != nil {
				return err
			}
			defer store.Close()

			meetings, err := store.Search(cmd.Context(), strings.Join(args, " "), historySearchMax)
			if err != nil {
				return err
			}
			return printMeetingList(cmd, cfg, meetings)
		},
	}
	cmd.Flags().IntVarP(&historySearchMax, "limit", "l", 20, "Maximum number of results")
	return cmd
}

func newHistoryDeleteCommand(deps *HistoryCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <meeting-id>",
		Short: "Delete a stored meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := historyStore(deps)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meeting %s\n", args[0])
			return nil
		},
	}
}

// printMeetingList renders a meeting slice in the chosen output format.
func printMeetingList(cmd *cobra.Command, cfg *config.CLIConfig, meetings []history.Meeting) error {
	outputFormat, err := resolveOutput(cfg, historyOutput)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case config.OutputFormatJSON:
		return printJSON(out, meetings)
	case config.OutputFormatYAML:
		return printYAML(out, meetings)
	default:
		if len(meetings) == 0 {
			fmt.Fprintln(out, "No meetings found.")
			return nil
		}
		fmt.Fprintf(out, "%-14s %-17s %-9s %s\n", "ID", "DATE", "SCORE", "TITLE")
		for _, m := range meetings {
			fmt.Fprintf(out, "%-14s %-17s %-9s %s\n",
				m.ID,
				m.Date.Format("2006-01-02 15:04"),
				render.FormatEffectiveness(m.Coaching.EffectivenessScore),
				m.Title)
		}
		return nil
	}
}
