package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew verifies collectors register without panicking and record values.
func TestNew(t *testing.T) {
	m := New("recap_test")

	m.BackendRequests.WithLabelValues("summarize", OutcomeOK).Inc()
	m.BackendDuration.WithLabelValues("summarize").Observe(0.25)
	m.FallbackSubstitutions.WithLabelValues("sentiment", ReasonParseError).Inc()
	m.ChatFallbacks.Inc()
	m.MeetingsAnalyzed.Inc()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["recap_test_backend_requests_total"])
	assert.True(t, names["recap_test_backend_request_duration_seconds"])
	assert.True(t, names["recap_test_normalize_fallback_substitutions_total"])
	assert.True(t, names["recap_test_chat_local_fallback_answers_total"])
	assert.True(t, names["recap_test_meetings_analyzed_total"])
}

// TestHandler verifies the /metrics handler serves the registry.
func TestHandler(t *testing.T) {
	m := New("recap_test")
	m.MeetingsAnalyzed.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "recap_test_meetings_analyzed_total 1")
}

// TestIsolatedRegistries verifies two instances do not collide.
func TestIsolatedRegistries(t *testing.T) {
	a := New("recap_test")
	b := New("recap_test")
	a.MeetingsAnalyzed.Inc()

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "recap_test_meetings_analyzed_total" {
			assert.Zero(t, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
}
