package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "meetings.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMeeting(id string, date time.Time) *Meeting {
	return &Meeting{
		ID:           id,
		Title:        "Q1 planning",
		Date:         date,
		Participants: []string{"Sarah", "David"},
		Transcript:   "Sarah: Let's review the Q1 roadmap.\nDavid: I have concerns about the timeline.",
		Summary: analysis.SummaryRecord{
			KeyPoints:   []analysis.KeyPoint{{Point: "roadmap reviewed"}},
			ActionItems: []analysis.ActionItem{{Task: "update timeline", Assignee: "David"}},
			Decisions:   []analysis.Decision{{Decision: "ship in March"}},
		},
		Sentiment: analysis.SentimentRecord{OverallSentiment: "positive", SentimentScore: 0.8},
		Coaching:  analysis.CoachingRecord{EffectivenessScore: 7},
		Tags:      []string{"planning"},
	}
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleMeeting("abc123def456", time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.Put(ctx, want))

	got, err := s.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Participants, got.Participants)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Sentiment, got.Sentiment)
	assert.Equal(t, want.Coaching, got.Coaching)
	assert.Equal(t, want.Tags, got.Tags)
	assert.True(t, want.Date.Equal(got.Date))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestPut_ReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := sampleMeeting("abc123def456", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.Put(ctx, m))

	m.Title = "Q1 planning (revised)"
	require.NoError(t, s.Put(ctx, m))

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q1 planning (revised)", got.Title)

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1, "replace must not duplicate rows")
}

func TestPut_EmptyID(t *testing.T) {
	s := newTestStore(t)
	m := sampleMeeting("", time.Now())
	assert.True(t, rerrors.IsValidation(s.Put(context.Background(), m)))
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, rerrors.IsNotFound(err))
}

func TestRecent_Order(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		m := sampleMeeting(MeetingID("transcript", base.AddDate(0, 0, i)), base.AddDate(0, 0, i))
		require.NoError(t, s.Put(ctx, m))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].Date.After(recent[1].Date), "most recent first")
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m1 := sampleMeeting("meeting-0001", time.Now().UTC())
	require.NoError(t, s.Put(ctx, m1))

	m2 := sampleMeeting("meeting-0002", time.Now().UTC())
	m2.Title = "Incident retrospective"
	m2.Transcript = "Alice: The outage lasted two hours."
	m2.Summary = analysis.SummaryRecord{KeyPoints: []analysis.KeyPoint{{Point: "postmortem scheduled"}}}
	require.NoError(t, s.Put(ctx, m2))

	hits, err := s.Search(ctx, "roadmap", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, m1.ID, hits[0].ID)

	hits, err = s.Search(ctx, "outage", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, m2.ID, hits[0].ID)

	// Summary text is indexed too.
	hits, err = s.Search(ctx, "postmortem", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = s.Search(ctx, "  ", 10)
	assert.True(t, rerrors.IsValidation(err))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := sampleMeeting("meeting-0001", time.Now().UTC())
	require.NoError(t, s.Put(ctx, m))
	require.NoError(t, s.Delete(ctx, m.ID))

	_, err := s.Get(ctx, m.ID)
	assert.True(t, rerrors.IsNotFound(err))

	// The search index entry goes with it.
	hits, err := s.Search(ctx, "roadmap", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	assert.True(t, rerrors.IsNotFound(s.Delete(ctx, m.ID)))
}

func TestByDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m := sampleMeeting(MeetingID("t", base.AddDate(0, 0, i*7)), base.AddDate(0, 0, i*7))
		require.NoError(t, s.Put(ctx, m))
	}

	got, err := s.ByDateRange(ctx, base.AddDate(0, 0, 5), base.AddDate(0, 0, 16))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMeetingID(t *testing.T) {
	date := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	id := MeetingID("Sarah: hello everyone", date)
	assert.Len(t, id, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", id)

	// Deterministic for the same content and date.
	assert.Equal(t, id, MeetingID("Sarah: hello everyone", date))

	// Distinct content or date changes the ID.
	assert.NotEqual(t, id, MeetingID("David: hello everyone", date))
	assert.NotEqual(t, id, MeetingID("Sarah: hello everyone", date.Add(time.Hour)))

	// Only the transcript head feeds the hash.
	long := "Sarah: " + string(make([]byte, 200))
	assert.Equal(t, MeetingID(long, date), MeetingID(long+"tail", date))
}
