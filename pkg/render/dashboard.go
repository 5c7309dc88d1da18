// Package render builds the terminal dashboard and chart images for analysis
// results. Panels are cleared and rebuilt on every render so repeated renders
// of the same record are idempotent.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	"github.com/recaplabs/recap-cli/pkg/logging"
)

// Panel names, in display order.
const (
	PanelKeyPoints     = "key-points"
	PanelActionItems   = "action-items"
	PanelDecisions     = "decisions"
	PanelSentiment     = "sentiment"
	PanelTrends        = "sentiment-trends"
	PanelTensions      = "tension-points"
	PanelMorale        = "morale"
	PanelEffectiveness = "effectiveness"
	PanelStrengths     = "strengths"
	PanelImprovements  = "improvement-areas"
	PanelRecommend     = "recommendations"
	PanelParticipation = "participation"
)

var panelOrder = []string{
	PanelKeyPoints, PanelActionItems, PanelDecisions,
	PanelSentiment, PanelTrends, PanelTensions, PanelMorale,
	PanelEffectiveness, PanelStrengths, PanelImprovements,
	PanelRecommend, PanelParticipation,
}

var panelTitles = map[string]string{
	PanelKeyPoints:     "Key Points",
	PanelActionItems:   "Action Items",
	PanelDecisions:     "Decisions",
	PanelSentiment:     "Overall Sentiment",
	PanelTrends:        "Sentiment Trends",
	PanelTensions:      "Tension Points",
	PanelMorale:        "Morale Indicators",
	PanelEffectiveness: "Meeting Effectiveness",
	PanelStrengths:     "Strengths",
	PanelImprovements:  "Areas for Improvement",
	PanelRecommend:     "Recommendations",
	PanelParticipation: "Participation Balance",
}

// Dashboard holds the current content of every panel. Rendering a record
// replaces the content of its panels wholesale; other panels are untouched.
type Dashboard struct {
	log    logging.Logger
	panels map[string][]string
}

// NewDashboard creates an empty dashboard. A nil logger gets a no-op.
func NewDashboard(log logging.Logger) *Dashboard {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Dashboard{
		log:    log,
		panels: make(map[string][]string),
	}
}

// renderPanel rebuilds one panel from build's output. A panic inside build is
// recovered: the panel keeps its prior content and sibling panels are never
// affected.
func (d *Dashboard) renderPanel(name string, build func() []string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panel render panicked, keeping prior content",
				logging.F("panel", name), logging.F("panic", fmt.Sprint(r)))
		}
	}()
	lines := build()
	d.panels[name] = lines
}

// RenderSummary rebuilds the three summary panels.
func (d *Dashboard) RenderSummary(rec analysis.SummaryRecord) {
	d.renderPanel(PanelKeyPoints, func() []string {
		lines := make([]string, 0, len(rec.KeyPoints))
		for _, kp := range rec.KeyPoints {
			lines = append(lines, "• "+kp.Point)
		}
		return lines
	})
	d.renderPanel(PanelActionItems, func() []string {
		lines := make([]string, 0, len(rec.ActionItems))
		for _, ai := range rec.ActionItems {
			line := "• " + ai.Task
			if ai.Assignee != "" {
				line += " — " + ai.Assignee
			}
			lines = append(lines, line)
		}
		return lines
	})
	d.renderPanel(PanelDecisions, func() []string {
		lines := make([]string, 0, len(rec.Decisions))
		for _, dec := range rec.Decisions {
			lines = append(lines, "• "+dec.Decision)
		}
		return lines
	})
}

// RenderSentiment rebuilds the four sentiment panels.
func (d *Dashboard) RenderSentiment(rec analysis.SentimentRecord) {
	d.renderPanel(PanelSentiment, func() []string {
		return []string{fmt.Sprintf("%s (%s)", rec.OverallSentiment, FormatSentimentScore(rec.SentimentScore))}
	})
	d.renderPanel(PanelTrends, func() []string {
		lines := make([]string, 0, len(rec.SentimentTrends))
		for _, tr := range rec.SentimentTrends {
			lines = append(lines, fmt.Sprintf("%s: %s (%s)", tr.Segment, tr.Tone, FormatSentimentScore(tr.Score)))
		}
		return lines
	})
	d.renderPanel(PanelTensions, func() []string {
		lines := make([]string, 0, len(rec.TensionPoints))
		for _, tp := range rec.TensionPoints {
			lines = append(lines, fmt.Sprintf("• %s: %s", tp.Topic, tp.Description))
		}
		return lines
	})
	d.renderPanel(PanelMorale, func() []string {
		lines := make([]string, 0, len(rec.MoraleIndicators))
		for _, mi := range rec.MoraleIndicators {
			marker := "+"
			if mi.Type == "negative" {
				marker = "-"
			}
			lines = append(lines, fmt.Sprintf("[%s] %s", marker, mi.Indicator))
		}
		return lines
	})
}

// RenderCoaching rebuilds the five coaching panels.
func (d *Dashboard) RenderCoaching(rec analysis.CoachingRecord) {
	d.renderPanel(PanelEffectiveness, func() []string {
		return []string{fmt.Sprintf("%s (%s)", FormatEffectiveness(rec.EffectivenessScore), GaugeColor(rec.EffectivenessScore))}
	})
	d.renderPanel(PanelStrengths, func() []string {
		lines := make([]string, 0, len(rec.Strengths))
		for _, st := range rec.Strengths {
			lines = append(lines, "• "+st.Strength)
		}
		return lines
	})
	d.renderPanel(PanelImprovements, func() []string {
		lines := make([]string, 0, len(rec.ImprovementAreas))
		for _, ia := range rec.ImprovementAreas {
			lines = append(lines, "• "+ia.Area)
		}
		return lines
	})
	d.renderPanel(PanelRecommend, func() []string {
		lines := make([]string, 0, len(rec.Recommendations))
		for _, re := range rec.Recommendations {
			lines = append(lines, "• "+re.Recommendation)
		}
		return lines
	})
	d.renderPanel(PanelParticipation, func() []string {
		state := "unbalanced"
		if rec.ParticipationBalance.Balanced {
			state = "balanced"
		}
		lines := []string{fmt.Sprintf("%s — %s", state, rec.ParticipationBalance.Description)}
		if len(rec.ParticipationBalance.DominantSpeakers) > 0 {
			lines = append(lines, "Dominant speakers: "+strings.Join(rec.ParticipationBalance.DominantSpeakers, ", "))
		}
		return lines
	})
}

// Panel returns the current lines of a panel, nil if never rendered.
func (d *Dashboard) Panel(name string) []string {
	return d.panels[name]
}

// WriteTo flushes the populated panels in display order.
func (d *Dashboard) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, name := range panelOrder {
		lines, ok := d.panels[name]
		if !ok {
			continue
		}
		n, err := fmt.Fprintf(w, "%s\n%s\n", panelTitles[name], strings.Repeat("─", len(panelTitles[name])))
		total += int64(n)
		if err != nil {
			return total, err
		}
		if len(lines) == 0 {
			n, err = fmt.Fprintln(w, "(none)")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		for _, line := range lines {
			n, err = fmt.Fprintln(w, line)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err = fmt.Fprintln(w)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// FormatSentimentScore renders a [0,1] score as a rounded percentage.
func FormatSentimentScore(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// FormatEffectiveness renders a 0..10 score as "n/10".
func FormatEffectiveness(score int) string {
	return fmt.Sprintf("%d/10", score)
}

// Gauge color buckets for the effectiveness score.
const (
	ColorGood    = "good"
	ColorAverage = "average"
	ColorPoor    = "poor"
)

// GaugeColor maps an effectiveness score to its color bucket.
func GaugeColor(score int) string {
	switch {
	case score >= 8:
		return ColorGood
	case score >= 6:
		return ColorAverage
	default:
		return ColorPoor
	}
}
