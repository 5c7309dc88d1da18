// Package session orchestrates a single transcript's analysis lifecycle: the
// concurrent backend calls, normalization into canonical records, and the
// follow-up chat exchange over those results.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	"github.com/recaplabs/recap-cli/pkg/chat"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
)

// SeedGreeting is the synthetic assistant turn placed at the head of the
// local chat log after every successful analysis. It is never sent to the
// backend.
const SeedGreeting = "I've analyzed your meeting. Ask me anything about the discussion, action items, or decisions."

// Backend is the subset of the API client the session needs. Declared here so
// tests can substitute a fake.
type Backend interface {
	Summarize(ctx context.Context, transcript string) (analysis.Raw, error)
	AnalyzeSentiment(ctx context.Context, transcript string) (analysis.Raw, error)
	CoachFeedback(ctx context.Context, transcript string) (analysis.Raw, error)
	Chat(ctx context.Context, transcript, question string, history []analysis.ChatTurn) (string, error)
}

// Records bundles the three canonical analysis results.
type Records struct {
	Summary   analysis.SummaryRecord   `json:"summary" yaml:"summary"`
	Sentiment analysis.SentimentRecord `json:"sentiment" yaml:"sentiment"`
	Coaching  analysis.CoachingRecord  `json:"coaching" yaml:"coaching"`
}

// Session owns one transcript, its analysis records, and the chat history
// built on top of them. All state lives on the struct; a fresh Session (or
// Reset) starts clean.
type Session struct {
	id        string
	backend   Backend
	norm      *analysis.Normalizer
	responder *chat.Responder
	log       logging.Logger
	m         *metrics.Metrics

	mu         sync.Mutex
	transcript string
	records    Records
	history    []analysis.ChatTurn
	analyzed   bool
}

// New creates a Session around the given backend. Nil logger or metrics get
// no-op implementations.
func New(backend Backend, log logging.Logger, m *metrics.Metrics) *Session {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.Nop()
	}
	id := uuid.NewString()
	return &Session{
		id:        id,
		backend:   backend,
		norm:      analysis.NewNormalizer(log, m),
		responder: chat.NewResponder(),
		log:       log.With(logging.F("session_id", id)),
		m:         m,
	}
}

// ID returns the session identifier, used to tag stored meetings.
func (s *Session) ID() string { return s.id }

// Analyze runs the three analysis calls concurrently over the transcript and,
// if every call succeeds, installs the normalized records and re-seeds the
// chat history. Any failure discards all partial results and leaves prior
// state untouched.
func (s *Session) Analyze(ctx context.Context, transcript string) error {
	if strings.TrimSpace(transcript) == "" {
		return fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type call struct {
		name string
		fn   func(context.Context, string) (analysis.Raw, error)
	}
	calls := []call{
		{"summarize", s.backend.Summarize},
		{"sentiment", s.backend.AnalyzeSentiment},
		{"coaching", s.backend.CoachFeedback},
	}

	raws := make([]analysis.Raw, len(calls))
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		go func(i int, c call) {
			defer wg.Done()
			raws[i], errs[i] = c.fn(ctx, transcript)
		}(i, c)
	}
	wg.Wait()

	// All-or-nothing: one failed call fails the whole attempt.
	for i, err := range errs {
		if err != nil {
			s.log.Error("analysis aborted, partial results discarded",
				logging.F("failed_call", calls[i].name), logging.Err(err))
			return fmt.Errorf("%s call failed: %w", calls[i].name, err)
		}
	}

	s.transcript = transcript
	s.records = Records{
		Summary:   s.norm.Summary(raws[0]),
		Sentiment: s.norm.Sentiment(raws[1]),
		Coaching:  s.norm.Coaching(raws[2]),
	}
	s.history = []analysis.ChatTurn{
		{Role: analysis.RoleAssistant, Content: SeedGreeting},
	}
	s.analyzed = true
	s.m.MeetingsAnalyzed.Inc()

	s.log.Info("transcript analyzed",
		logging.F("transcript_chars", len(transcript)),
		logging.F("key_points", len(s.records.Summary.KeyPoints)),
		logging.F("effectiveness", s.records.Coaching.EffectivenessScore))
	return nil
}

// Ask sends a question about the analyzed transcript. The wire history
// excludes the seed greeting so the sequence the backend sees strictly
// alternates starting with a user turn. A transport failure falls through to
// the local heuristic responder; Ask only errors on invalid input.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question is empty: %w", rerrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.analyzed {
		return "", fmt.Errorf("no transcript analyzed yet: %w", rerrors.ErrValidation)
	}

	// Prior turns minus the seed greeting at index 0.
	wire := make([]analysis.ChatTurn, len(s.history)-1)
	copy(wire, s.history[1:])

	answer, err := s.backend.Chat(ctx, s.transcript, question, wire)
	if err != nil {
		s.log.Warn("chat backend unavailable, answering locally", logging.Err(err))
		s.m.ChatFallbacks.Inc()
		answer = s.responder.Answer(question)
	}

	s.history = append(s.history,
		analysis.ChatTurn{Role: analysis.RoleUser, Content: question},
		analysis.ChatTurn{Role: analysis.RoleAssistant, Content: answer},
	)
	return answer, nil
}

// Records returns the canonical analysis results. The boolean reports whether
// an analysis has completed.
func (s *Session) Records() (Records, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.analyzed
}

// Transcript returns the transcript of the last successful analysis.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// History returns a copy of the local chat log, seed greeting included.
func (s *Session) History() []analysis.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]analysis.ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the transcript, records, and chat history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = ""
	s.records = Records{}
	s.history = nil
	s.analyzed = false
}
