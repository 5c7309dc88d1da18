package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*APIClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := DefaultOptions()
	opts.MaxRetries = 1
	opts.InitialBackoff = time.Millisecond
	opts.MaxBackoff = 5 * time.Millisecond
	return New(srv.URL, opts, nil, nil), srv
}

// TestSummarize_StructuredPayload verifies a pre-parsed object resolves to
// RawStructured.
func TestSummarize_StructuredPayload(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summarize", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Team reviewed Q1 results", req["transcript"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary": {"key_points": [{"point": "Q1 reviewed"}], "action_items": [], "decisions": []}}`))
	}))

	raw, err := c.Summarize(context.Background(), "Team reviewed Q1 results")
	require.NoError(t, err)
	assert.Equal(t, analysis.RawStructured, raw.State)
}

// TestSummarize_SerializedPayload verifies a stringified payload resolves to
// RawLiteral.
func TestSummarize_SerializedPayload(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary": "{\"key_points\":[{\"point\":\"Q1 reviewed\"}],\"action_items\":[],\"decisions\":[]}"}`))
	}))

	raw, err := c.Summarize(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, analysis.RawLiteral, raw.State)
	assert.Contains(t, raw.Literal, "Q1 reviewed")
}

// TestAnalyzeSentiment_MissingField verifies an absent field resolves to
// RawMissing rather than erroring.
func TestAnalyzeSentiment_MissingField(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze-sentiment", r.URL.Path)
		w.Write([]byte(`{"status": "success"}`))
	}))

	raw, err := c.AnalyzeSentiment(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, analysis.RawMissing, raw.State)
}

// TestEmptyTranscriptRejectedLocally verifies no network call is made for an
// empty transcript.
func TestEmptyTranscriptRejectedLocally(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	for _, transcript := range []string{"", "   ", "\n\t"} {
		_, err := c.Summarize(context.Background(), transcript)
		assert.True(t, rerrors.IsValidation(err))
		_, err = c.AnalyzeSentiment(context.Background(), transcript)
		assert.True(t, rerrors.IsValidation(err))
		_, err = c.CoachFeedback(context.Background(), transcript)
		assert.True(t, rerrors.IsValidation(err))
	}
	assert.Zero(t, calls.Load(), "validation failures must not reach the network")
}

// TestNon2xxIsTransportError verifies 4xx maps to ErrTransport without retry.
func TestNon2xxIsTransportError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := c.CoachFeedback(context.Background(), "t")
	assert.True(t, rerrors.IsTransport(err))
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

// Test5xxIsRetried verifies a transient 500 is retried and can recover.
func Test5xxIsRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"summary": {"key_points": [], "action_items": [], "decisions": []}}`))
	}))

	raw, err := c.Summarize(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, analysis.RawStructured, raw.State)
	assert.Equal(t, int32(2), calls.Load())
}

// TestAuthorizationHeader verifies the bearer token is attached when set.
func TestAuthorizationHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"answer": "ok"}`))
	}))
	t.Cleanup(srv.Close)

	opts := DefaultOptions()
	opts.Token = "sk-demo"
	c := New(srv.URL, opts, nil, nil)

	_, err := c.Chat(context.Background(), "t", "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-demo", got)
}

// TestChat verifies the request body and answer decoding.
func TestChat(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "the transcript", req.Transcript)
		assert.Equal(t, "what was decided?", req.Question)
		require.Len(t, req.ChatHistory, 2)
		assert.Equal(t, analysis.RoleUser, req.ChatHistory[0].Role)
		assert.Equal(t, analysis.RoleAssistant, req.ChatHistory[1].Role)

		w.Write([]byte(`{"answer": "the launch moved by two weeks"}`))
	}))

	history := []analysis.ChatTurn{
		{Role: analysis.RoleUser, Content: "hi"},
		{Role: analysis.RoleAssistant, Content: "hello"},
	}
	answer, err := c.Chat(context.Background(), "the transcript", "what was decided?", history)
	require.NoError(t, err)
	assert.Equal(t, "the launch moved by two weeks", answer)
}

// TestChat_EmptyHistorySerializesAsArray verifies nil history is sent as [].
func TestChat_EmptyHistorySerializesAsArray(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[]`, string(body["chat_history"]))
		w.Write([]byte(`{"answer": "ok"}`))
	}))

	_, err := c.Chat(context.Background(), "t", "q", nil)
	require.NoError(t, err)
}

// TestChat_ValidationErrors verifies empty inputs are rejected locally.
func TestChat_ValidationErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := c.Chat(context.Background(), "", "q", nil)
	assert.True(t, rerrors.IsValidation(err))
	_, err = c.Chat(context.Background(), "t", "  ", nil)
	assert.True(t, rerrors.IsValidation(err))
	assert.Zero(t, calls.Load())
}

// TestNetworkFailureIsTransportError verifies a dead server maps to
// ErrTransport.
func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately dead

	opts := DefaultOptions()
	opts.MaxRetries = 0
	opts.InitialBackoff = time.Millisecond
	c := New(srv.URL, opts, nil, nil)

	_, err := c.Summarize(context.Background(), "t")
	assert.True(t, rerrors.IsTransport(err))
}

// TestPing verifies reachability checks.
func TestPing(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r) // any HTTP response counts as reachable
	}))
	assert.NoError(t, c.Ping(context.Background()))

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()
	deadClient := New(dead.URL, DefaultOptions(), nil, nil)
	assert.Error(t, deadClient.Ping(context.Background()))
}
