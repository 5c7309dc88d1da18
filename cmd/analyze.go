package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/pkg/history"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
	"github.com/recaplabs/recap-cli/pkg/render"
	"github.com/recaplabs/recap-cli/pkg/session"
)

// Analyze command flags.
var (
	analyzeOutput  string
	analyzeCharts  string
	analyzeNoStore bool
	analyzeTitle   string
	analyzeType    string
	analyzeTags    []string
)

// AnalyzeCommandDeps holds the dependencies for the analyze command.
type AnalyzeCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewSession func(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *session.Session
	OpenStore  func(cfg *config.CLIConfig, log logging.Logger) (*history.Store, error)
}

// DefaultAnalyzeDeps returns the default dependencies for production use.
func DefaultAnalyzeDeps() *AnalyzeCommandDeps {
	return &AnalyzeCommandDeps{
		LoadConfig: config.LoadConfig,
		NewSession: func(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *session.Session {
			return session.New(NewAPIClient(cfg, log, m), log, m)
		},
		OpenStore: openHistory,
	}
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(deps *AnalyzeCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAnalyzeDeps()
	}

	cmd := &cobra.Command{
		Use:   "analyze <transcript-file>",
		Short: "Analyze a meeting transcript",
		Long: `Analyze a meeting transcript for summary, sentiment, and coaching feedback.

The transcript is sent to the backend's three analysis endpoints in parallel.
Results are rendered as a dashboard (or emitted as JSON/YAML) and stored in
the local meeting history unless --no-store is given.

Pass "-" as the file to read the transcript from stdin.

Examples:
  # Analyze a transcript file
  recap analyze standup.txt

  # Pipe a transcript in
  pbpaste | recap analyze -

  # Emit machine-readable results
  recap analyze standup.txt -o json

  # Write the trend chart and effectiveness gauge as PNGs
  recap analyze standup.txt --charts ./charts

  # Analyze without recording to history
  recap analyze standup.txt --no-store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, deps, args[0])
		},
	}

	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&analyzeCharts, "charts", "", "Directory to write chart PNGs (overrides config)")
	cmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "Skip recording the meeting in local history")
	cmd.Flags().StringVar(&analyzeTitle, "title", "", "Meeting title (defaults to the transcript's first line)")
	cmd.Flags().StringVar(&analyzeType, "type", "", "Meeting type tag (e.g. standup, planning, retro)")
	cmd.Flags().StringSliceVar(&analyzeTags, "tag", nil, "Tags to attach to the stored meeting")

	return cmd
}

func runAnalyze(cmd *cobra.Command, deps *AnalyzeCommandDeps, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	outputFormat, err := resolveOutput(cfg, analyzeOutput)
	if err != nil {
		return err
	}

	transcript, err := readTranscript(path)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	m := metrics.New("recap")
	sess := deps.NewSession(cfg, log, m)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	if err := sess.Analyze(ctx, transcript); err != nil {
		return fmt.Errorf("analyzing transcript: %w", err)
	}
	records, _ := sess.Records()

	if !analyzeNoStore {
		if err := storeMeeting(ctx, deps, cfg, log, transcript, records); err != nil {
			// Storage is best-effort; the analysis already succeeded.
			log.Warn("could not record meeting in history", logging.Err(err))
		}
	}

	chartsDir := analyzeCharts
	if chartsDir == "" {
		chartsDir = cfg.ChartsDir
	}
	if chartsDir != "" {
		line, gauge, err := writeCharts(records.Sentiment.SentimentTrends, records.Coaching.EffectivenessScore, chartsDir)
		if err != nil {
			return fmt.Errorf("writing charts: %w", err)
		}
		if line != "" {
			log.Info("chart written", logging.F("path", line))
		}
		log.Info("chart written", logging.F("path", gauge))
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case config.OutputFormatJSON:
		return printJSON(out, records)
	case config.OutputFormatYAML:
		return printYAML(out, records)
	default:
		dash := render.NewDashboard(log)
		dash.RenderSummary(records.Summary)
		dash.RenderSentiment(records.Sentiment)
		dash.RenderCoaching(records.Coaching)
		_, err := dash.WriteTo(out)
		return err
	}
}

func storeMeeting(ctx context.Context, deps *AnalyzeCommandDeps, cfg *config.CLIConfig, log logging.Logger, transcript string, records session.Records) error {
	store, err := deps.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now()
	title := analyzeTitle
	if title == "" {
		title = history.DeriveTitle(transcript)
	}

	meeting := &history.Meeting{
		ID:           history.MeetingID(transcript, now),
		Title:        title,
		Date:         now,
		Participants: history.ExtractParticipants(transcript),
		Transcript:   transcript,
		Summary:      records.Summary,
		Sentiment:    records.Sentiment,
		Coaching:     records.Coaching,
		MeetingType:  analyzeType,
		Tags:         analyzeTags,
	}
	if err := store.Put(ctx, meeting); err != nil {
		return err
	}
	log.Info("meeting recorded", logging.F("meeting_id", meeting.ID), logging.F("title", meeting.Title))
	return nil
}
