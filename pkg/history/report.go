package history

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

// TrendPoint is one meeting's sentiment score on the timeline.
type TrendPoint struct {
	Date  string  `json:"date" yaml:"date"`
	Score float64 `json:"score" yaml:"score"`
}

// TrendReport summarizes sentiment movement over a window of meetings.
type TrendReport struct {
	PeriodDays       int          `json:"period_days" yaml:"period_days"`
	MeetingsAnalyzed int          `json:"meetings_analyzed" yaml:"meetings_analyzed"`
	AverageSentiment float64      `json:"average_sentiment" yaml:"average_sentiment"`
	Trend            string       `json:"trend" yaml:"trend"`
	Timeline         []TrendPoint `json:"sentiment_timeline" yaml:"sentiment_timeline"`
	Highest          float64      `json:"highest_sentiment" yaml:"highest_sentiment"`
	Lowest           float64      `json:"lowest_sentiment" yaml:"lowest_sentiment"`
}

// ParticipantCount pairs a participant with how many meetings they attended.
type ParticipantCount struct {
	Name     string `json:"name" yaml:"name"`
	Meetings int    `json:"meetings" yaml:"meetings"`
}

// PerformanceReport aggregates team metrics over a window of meetings.
type PerformanceReport struct {
	Period                 string             `json:"report_period" yaml:"report_period"`
	TotalMeetings          int                `json:"total_meetings" yaml:"total_meetings"`
	TotalActionItems       int                `json:"total_action_items" yaml:"total_action_items"`
	TotalDecisions         int                `json:"total_decisions" yaml:"total_decisions"`
	AverageEffectiveness   float64            `json:"average_effectiveness_score" yaml:"average_effectiveness_score"`
	ActionItemsPerMeeting  float64            `json:"action_items_per_meeting" yaml:"action_items_per_meeting"`
	DecisionsPerMeeting    float64            `json:"decisions_per_meeting" yaml:"decisions_per_meeting"`
	MostActiveParticipants []ParticipantCount `json:"most_active_participants" yaml:"most_active_participants"`
	MeetingTypes           map[string]int     `json:"meeting_types_distribution,omitempty" yaml:"meeting_types_distribution,omitempty"`
	Sentiment              *TrendReport       `json:"sentiment_trends,omitempty" yaml:"sentiment_trends,omitempty"`
}

// SentimentTrends analyzes sentiment movement across the meetings of the
// last `days` days. Returns ErrNotFound when the window holds no meetings.
func (s *Store) SentimentTrends(ctx context.Context, days int) (*TrendReport, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	meetings, err := s.ByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, fmt.Errorf("no meetings in the last %d days: %w", days, rerrors.ErrNotFound)
	}

	// Oldest first so the trend compares earliest against latest.
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].Date.Before(meetings[j].Date) })

	report := &TrendReport{
		PeriodDays:       days,
		MeetingsAnalyzed: len(meetings),
		Highest:          math.Inf(-1),
		Lowest:           math.Inf(1),
	}

	var sum float64
	for _, m := range meetings {
		score := m.Sentiment.SentimentScore
		sum += score
		report.Timeline = append(report.Timeline, TrendPoint{
			Date:  m.Date.Format("2006-01-02"),
			Score: score,
		})
		report.Highest = math.Max(report.Highest, score)
		report.Lowest = math.Min(report.Lowest, score)
	}
	report.AverageSentiment = round2(sum / float64(len(meetings)))

	report.Trend = "declining"
	if len(report.Timeline) > 1 && report.Timeline[len(report.Timeline)-1].Score > report.Timeline[0].Score {
		report.Trend = "improving"
	} else if len(report.Timeline) == 1 {
		report.Trend = "steady"
	}
	return report, nil
}

// Performance builds the team performance report over the last `days` days.
// Returns ErrNotFound when the window holds no meetings.
func (s *Store) Performance(ctx context.Context, days int) (*PerformanceReport, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	meetings, err := s.ByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, fmt.Errorf("no meetings in the last %d days: %w", days, rerrors.ErrNotFound)
	}

	report := &PerformanceReport{
		Period:        fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
		TotalMeetings: len(meetings),
		MeetingTypes:  make(map[string]int),
	}

	var effectivenessSum int
	participantFreq := make(map[string]int)
	for _, m := range meetings {
		report.TotalActionItems += len(m.Summary.ActionItems)
		report.TotalDecisions += len(m.Summary.Decisions)
		effectivenessSum += m.Coaching.EffectivenessScore
		for _, p := range m.Participants {
			participantFreq[p]++
		}
		if m.MeetingType != "" {
			report.MeetingTypes[m.MeetingType]++
		}
	}

	n := float64(len(meetings))
	report.AverageEffectiveness = round2(float64(effectivenessSum) / n)
	report.ActionItemsPerMeeting = round1(float64(report.TotalActionItems) / n)
	report.DecisionsPerMeeting = round1(float64(report.TotalDecisions) / n)
	report.MostActiveParticipants = topParticipants(participantFreq, 5)

	if trends, err := s.SentimentTrends(ctx, days); err == nil {
		report.Sentiment = trends
	}
	return report, nil
}

// topParticipants returns the k most frequent participants, ties broken by
// name for stable output.
func topParticipants(freq map[string]int, k int) []ParticipantCount {
	out := make([]ParticipantCount, 0, len(freq))
	for name, count := range freq {
		out = append(out, ParticipantCount{Name: name, Meetings: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meetings != out[j].Meetings {
			return out[i].Meetings > out[j].Meetings
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round1(x float64) float64 { return math.Round(x*10) / 10 }
