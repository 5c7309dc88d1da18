// Package analysis defines the canonical meeting-analysis records and the
// normalization pipeline that turns unreliable backend payloads into them.
//
// The backend is model-backed and not guaranteed to return well-formed,
// consistently-typed output: a payload field may be missing, may be a
// pre-parsed object, or may be a serialized JSON string (possibly wrapped in
// markdown code fences, possibly malformed). Everything downstream of this
// package, rendering and history storage included, relies on the guarantee
// that a normalized record is always fully populated and renderable.
package analysis

// Kind identifies one of the three analysis record types.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindSentiment Kind = "sentiment"
	KindCoaching  Kind = "coaching"
)

// KeyPoint is a single discussion point from the summary.
type KeyPoint struct {
	Point string `json:"point"`
}

// ActionItem is a task assigned during the meeting.
type ActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
}

// Decision is a decision finalized during the meeting.
type Decision struct {
	Decision string `json:"decision"`
}

// SummaryRecord is the canonical structured summary. All three lists are
// order-preserving and rendered in received order.
type SummaryRecord struct {
	KeyPoints   []KeyPoint   `json:"key_points"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []Decision   `json:"decisions"`
}

// SentimentTrend is the tone of one ordered segment of the meeting.
type SentimentTrend struct {
	Segment string  `json:"segment"`
	Tone    string  `json:"tone"`
	Score   float64 `json:"score"`
}

// TensionPoint is a moment of disagreement or tension.
type TensionPoint struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// MoraleIndicator is a sign of team engagement or disengagement.
// Type is "positive" or "negative".
type MoraleIndicator struct {
	Indicator string `json:"indicator"`
	Type      string `json:"type"`
}

// SentimentRecord is the canonical sentiment report. SentimentScore is on a
// 0..1 scale, higher is more positive.
type SentimentRecord struct {
	OverallSentiment string            `json:"overall_sentiment"`
	SentimentScore   float64           `json:"sentiment_score"`
	SentimentTrends  []SentimentTrend  `json:"sentiment_trends"`
	TensionPoints    []TensionPoint    `json:"tension_points"`
	MoraleIndicators []MoraleIndicator `json:"morale_indicators"`
}

// Strength is something that went well in the meeting.
type Strength struct {
	Strength string `json:"strength"`
}

// ImprovementArea is something to improve in future meetings.
type ImprovementArea struct {
	Area string `json:"area"`
}

// Recommendation is an actionable suggestion for better meetings.
type Recommendation struct {
	Recommendation string `json:"recommendation"`
}

// ParticipationBalance describes the speaking-time distribution.
type ParticipationBalance struct {
	Balanced         bool     `json:"balanced"`
	Description      string   `json:"description"`
	DominantSpeakers []string `json:"dominant_speakers"`
}

// CoachingRecord is the canonical meeting-effectiveness report.
// EffectivenessScore is an integer on the 0..10 scale.
type CoachingRecord struct {
	EffectivenessScore   int                  `json:"effectiveness_score"`
	Strengths            []Strength           `json:"strengths"`
	ImprovementAreas     []ImprovementArea    `json:"improvement_areas"`
	Recommendations      []Recommendation     `json:"recommendations"`
	ParticipationBalance ParticipationBalance `json:"participation_balance"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one turn of the follow-up conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
