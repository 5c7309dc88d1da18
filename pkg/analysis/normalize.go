package analysis

import (
	"encoding/json"

	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
)

// Normalizer turns resolved Raw payloads into canonical records, substituting
// the fixed fallback for anything that cannot be decoded. Substitution is
// always whole-record: a partially decodable payload is never merged with
// fallback fields.
type Normalizer struct {
	log logging.Logger
	m   *metrics.Metrics
}

// NewNormalizer creates a Normalizer. A nil logger or metrics instance is
// replaced by a no-op implementation.
func NewNormalizer(log logging.Logger, m *metrics.Metrics) *Normalizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Normalizer{log: log, m: m}
}

// Summary normalizes the /summarize payload field.
func (n *Normalizer) Summary(raw Raw) SummaryRecord {
	return normalize(n, KindSummary, raw, FallbackSummary())
}

// Sentiment normalizes the /analyze-sentiment payload field.
func (n *Normalizer) Sentiment(raw Raw) SentimentRecord {
	return normalize(n, KindSentiment, raw, FallbackSentiment())
}

// Coaching normalizes the /coach-feedback payload field.
func (n *Normalizer) Coaching(raw Raw) CoachingRecord {
	return normalize(n, KindCoaching, raw, FallbackCoaching())
}

// normalize applies the three-tier policy shared by all kinds:
//  1. Missing field (absent, null, or the literal "undefined") -> fallback.
//  2. Pre-parsed object -> decode directly; decode failure -> fallback.
//  3. Serialized string -> strip code fences, decode; failure -> fallback.
func normalize[T any](n *Normalizer, kind Kind, raw Raw, fallback T) T {
	switch raw.State {
	case RawStructured:
		var record T
		if err := json.Unmarshal(raw.Structured, &record); err != nil {
			n.log.Warn("structured payload failed to decode, substituting fallback",
				logging.F("kind", string(kind)), logging.Err(err))
			n.m.FallbackSubstitutions.WithLabelValues(string(kind), metrics.ReasonParseError).Inc()
			return fallback
		}
		return record

	case RawLiteral:
		var record T
		cleaned := stripCodeFences(raw.Literal)
		if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
			n.log.Warn("serialized payload failed to decode, substituting fallback",
				logging.F("kind", string(kind)), logging.Err(err))
			n.m.FallbackSubstitutions.WithLabelValues(string(kind), metrics.ReasonParseError).Inc()
			return fallback
		}
		return record

	default:
		reason := metrics.ReasonMissing
		if raw.Literal == "undefined" {
			reason = metrics.ReasonLiteralUndefined
		}
		n.log.Debug("payload field missing, substituting fallback",
			logging.F("kind", string(kind)), logging.F("reason", reason))
		n.m.FallbackSubstitutions.WithLabelValues(string(kind), reason).Inc()
		return fallback
	}
}
