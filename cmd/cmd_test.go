package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/pkg/history"
	"github.com/recaplabs/recap-cli/pkg/logging"
)

// mockConfig returns a config pointing at nothing in particular; tests that
// hit the network override BackendURL with an httptest server.
func mockConfig(t *testing.T) *config.CLIConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	cfg.HistoryDB = filepath.Join(t.TempDir(), "meetings.db")
	cfg.APIToken = "test-token" // keeps tests away from the system keyring
	return cfg
}

// mockBackend serves canned analysis responses for all four endpoints.
func mockBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/summarize", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary": {"key_points": [{"point": "Q1 reviewed"}], "action_items": [{"task": "update forecast", "assignee": "Sarah"}], "decisions": []}}`))
	})
	mux.HandleFunc("/analyze-sentiment", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sentiment_analysis": {"overall_sentiment": "positive", "sentiment_score": 0.8, "sentiment_trends": [{"segment": "Beginning", "tone": "neutral", "score": 0.6}, {"segment": "End", "tone": "positive", "score": 0.9}], "tension_points": [], "morale_indicators": []}}`))
	})
	mux.HandleFunc("/coach-feedback", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coaching_feedback": {"effectiveness_score": 8, "strengths": [{"strength": "clear agenda"}], "improvement_areas": [], "recommendations": [], "participation_balance": {"balanced": true, "description": "even split", "dominant_speakers": []}}}`))
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "The forecast update went to Sarah."}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeTranscript drops a sample transcript file into a temp dir.
func writeTranscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.txt")
	content := "Sarah: Let's review the Q1 numbers.\nDavid: I have a concern about the forecast.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs a cobra command with args and captures stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// testHistoryDeps wires history commands at a temp database.
func testHistoryDeps(cfg *config.CLIConfig) *HistoryCommandDeps {
	return &HistoryCommandDeps{
		Config:     cfg,
		LoadConfig: func() (*config.CLIConfig, error) { return cfg, nil },
		OpenStore: func(c *config.CLIConfig, log logging.Logger) (*history.Store, error) {
			path, err := c.HistoryDBPath()
			if err != nil {
				return nil, err
			}
			return history.Open(path, log)
		},
	}
}
