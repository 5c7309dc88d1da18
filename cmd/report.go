package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/pkg/analysis"
	"github.com/recaplabs/recap-cli/pkg/history"
	"github.com/recaplabs/recap-cli/pkg/render"
)

// Report command flags.
var (
	reportOutput string
	reportDays   int
	reportCharts string
	reportTrends bool
)

// NewReportCommand creates the report command. It shares the history deps so
// tests can point it at a temp store.
func NewReportCommand(deps *HistoryCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultHistoryDeps()
	}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Team performance report over stored meetings",
		Long: `Aggregate the stored meeting history into a team performance report:
meeting counts, action items and decisions per meeting, average
effectiveness, most active participants, and sentiment movement.

Examples:
  # Report over the last 30 days
  recap report

  # Report over the last quarter, as JSON
  recap report --days 90 -o json

  # Sentiment trends only
  recap report --trends`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, deps)
		},
	}

	cmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().IntVarP(&reportDays, "days", "d", 30, "Number of days to include")
	cmd.Flags().StringVar(&reportCharts, "charts", "", "Directory to write the sentiment timeline chart PNG")
	cmd.Flags().BoolVar(&reportTrends, "trends", false, "Show sentiment trends only")

	return cmd
}

func runReport(cmd *cobra.Command, deps *HistoryCommandDeps) error {
	cfg, store, err := historyStore(deps)
	if err != nil {
		return err
	}
	defer store.Close()

	outputFormat, err := resolveOutput(cfg, reportOutput)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if reportTrends {
		trends, err := store.SentimentTrends(cmd.Context(), reportDays)
		if err != nil {
			return err
		}
		switch outputFormat {
		case config.OutputFormatJSON:
			return printJSON(out, trends)
		case config.OutputFormatYAML:
			return printYAML(out, trends)
		default:
			printTrendsText(cmd, trends)
			return nil
		}
	}

	report, err := store.Performance(cmd.Context(), reportDays)
	if err != nil {
		return err
	}

	if reportCharts != "" && report.Sentiment != nil {
		if err := writeTimelineChart(report.Sentiment, reportCharts); err != nil {
			return fmt.Errorf("writing timeline chart: %w", err)
		}
	}

	switch outputFormat {
	case config.OutputFormatJSON:
		return printJSON(out, report)
	case config.OutputFormatYAML:
		return printYAML(out, report)
	default:
		fmt.Fprintf(out, "Team performance %s\n\n", report.Period)
		fmt.Fprintf(out, "Meetings:              %d\n", report.TotalMeetings)
		fmt.Fprintf(out, "Action items:          %d (%.1f per meeting)\n", report.TotalActionItems, report.ActionItemsPerMeeting)
		fmt.Fprintf(out, "Decisions:             %d (%.1f per meeting)\n", report.TotalDecisions, report.DecisionsPerMeeting)
		fmt.Fprintf(out, "Average effectiveness: %.2f/10\n", report.AverageEffectiveness)

		if len(report.MostActiveParticipants) > 0 {
			fmt.Fprintln(out, "\nMost active participants:")
			for _, p := range report.MostActiveParticipants {
				fmt.Fprintf(out, "  %-24s %d meetings\n", p.Name, p.Meetings)
			}
		}
		if len(report.MeetingTypes) > 0 {
			fmt.Fprintln(out, "\nMeeting types:")
			for name, count := range report.MeetingTypes {
				fmt.Fprintf(out, "  %-24s %d\n", name, count)
			}
		}
		if report.Sentiment != nil {
			fmt.Fprintln(out)
			printTrendsText(cmd, report.Sentiment)
		}
		return nil
	}
}

func printTrendsText(cmd *cobra.Command, trends *history.TrendReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sentiment over the last %d days (%d meetings): %s\n",
		trends.PeriodDays, trends.MeetingsAnalyzed, trends.Trend)
	fmt.Fprintf(out, "  average %s, low %s, high %s\n",
		render.FormatSentimentScore(trends.AverageSentiment),
		render.FormatSentimentScore(trends.Lowest),
		render.FormatSentimentScore(trends.Highest))
	for _, p := range trends.Timeline {
		fmt.Fprintf(out, "  %s  %s\n", p.Date, render.FormatSentimentScore(p.Score))
	}
}

// writeTimelineChart draws the report timeline with the same renderer as the
// per-meeting trend chart, one segment per meeting date.
func writeTimelineChart(trends *history.TrendReport, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	segments := make([]analysis.SentimentTrend, 0, len(trends.Timeline))
	for _, p := range trends.Timeline {
		segments = append(segments, analysis.SentimentTrend{Segment: p.Date, Score: p.Score})
	}
	return render.LineChart(segments, filepath.Join(dir, "sentiment-timeline.png"))
}
