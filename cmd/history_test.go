package cmd

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	"github.com/recaplabs/recap-cli/pkg/history"
)

// seedHistory stores n meetings directly through the deps' store.
func seedHistory(t *testing.T, deps *HistoryCommandDeps, n int) []string {
	t.Helper()
	store, err := deps.OpenStore(deps.Config, nil)
	require.NoError(t, err)
	defer store.Close()

	ids := make([]string, 0, n)
	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour)
	for i := 0; i < n; i++ {
		date := base.Add(time.Duration(i) * time.Hour)
		m := &history.Meeting{
			ID:           history.MeetingID("seed", date),
			Title:        "Sprint planning",
			Date:         date,
			Participants: []string{"Sarah", "David"},
			Transcript:   "Sarah: planning the sprint backlog.",
			Summary: analysis.SummaryRecord{
				KeyPoints: []analysis.KeyPoint{{Point: "backlog groomed"}},
			},
			Sentiment: analysis.SentimentRecord{OverallSentiment: "positive", SentimentScore: 0.7},
			Coaching:  analysis.CoachingRecord{EffectivenessScore: 7},
		}
		require.NoError(t, store.Put(context.Background(), m))
		ids = append(ids, m.ID)
	}
	return ids
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand(nil)
	require.NotNil(t, cmd)

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, want := range []string{"list", "show", "search", "delete"} {
		assert.True(t, subs[want], "missing subcommand %q", want)
	}
}

func TestHistoryList(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))
	seedHistory(t, deps, 3)

	out, err := execute(t, NewHistoryCommand(deps), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Sprint planning")
	assert.Contains(t, out, "7/10")
}

func TestHistoryList_Empty(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))

	out, err := execute(t, NewHistoryCommand(deps), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No meetings found.")
}

func TestHistoryList_JSON(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))
	seedHistory(t, deps, 2)

	out, err := execute(t, NewHistoryCommand(deps), "list", "-o", "json")
	require.NoError(t, err)

	var meetings []history.Meeting
	require.NoError(t, json.Unmarshal([]byte(out), &meetings))
	assert.Len(t, meetings, 2)
}

func TestHistoryShow(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))
	ids := seedHistory(t, deps, 1)

	out, err := execute(t, NewHistoryCommand(deps), "show", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Sprint planning")
	assert.Contains(t, out, "Sarah, David")
	assert.Contains(t, out, "• backlog groomed")
}

func TestHistoryShow_NotFound(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))
	_, err := execute(t, NewHistoryCommand(deps), "show", "ffffffffffff")
	assert.Error(t, err)
}

func TestHistorySearch(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))
	seedHistory(t, deps, 1)

	out, err := execute(t, NewHistoryCommand(deps), "search", "backlog")
	require.NoError(t, err)
	assert.Contains(t, out, "Sprint planning")

	out, err = execute(t, NewHistoryCommand(deps), "search", "unrelatedterm")
	require.NoError(t, err)
	assert.Contains(t, out, "No meetings found.")
}

func TestHistoryDelete(t *testing.T) {
	deps := testHistoryDeps(mockConfig(t))
	ids := seedHistory(t, deps, 1)

	out, err := execute(t, NewHistoryCommand(deps), "delete", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted meeting")

	_, err = execute(t, NewHistoryCommand(deps), "show", ids[0])
	assert.Error(t, err)
}
