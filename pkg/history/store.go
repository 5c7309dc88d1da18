// Package history stores analyzed meetings in a local SQLite database and
// derives team-level trend reports from them.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
	"github.com/recaplabs/recap-cli/pkg/logging"
)

// Meeting is one stored analysis result.
type Meeting struct {
	ID           string                   `json:"id" yaml:"id"`
	Title        string                   `json:"title" yaml:"title"`
	Date         time.Time                `json:"date" yaml:"date"`
	Participants []string                 `json:"participants" yaml:"participants"`
	Transcript   string                   `json:"transcript" yaml:"transcript"`
	Summary      analysis.SummaryRecord   `json:"summary" yaml:"summary"`
	Sentiment    analysis.SentimentRecord `json:"sentiment" yaml:"sentiment"`
	Coaching     analysis.CoachingRecord  `json:"coaching" yaml:"coaching"`
	MeetingType  string                   `json:"meeting_type,omitempty" yaml:"meeting_type,omitempty"`
	Tags         []string                 `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt    time.Time                `json:"created_at" yaml:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	participants TEXT NOT NULL,
	transcript TEXT NOT NULL,
	summary TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	coaching TEXT NOT NULL,
	meeting_type TEXT,
	tags TEXT,
	created_at TEXT NOT NULL
);
CREATE VIRTUAL TABLE IF NOT EXISTS meetings_fts USING fts5(
	id UNINDEXED, title, transcript, summary_text, tags
);
`

// Store is a SQLite-backed meeting archive.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens (creating if needed) the database at path. A nil logger gets a
// no-op.
func Open(path string, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// MeetingID derives the stable identifier for a transcript analyzed at date:
// the first 12 hex characters of a hash over the transcript head and the
// timestamp.
func MeetingID(transcript string, date time.Time) string {
	head := transcript
	if len(head) > 100 {
		head = head[:100]
	}
	sum := sha256.Sum256([]byte(head + date.Format(time.RFC3339)))
	return hex.EncodeToString(sum[:])[:12]
}

// Put inserts or replaces a meeting and its search index row.
func (s *Store) Put(ctx context.Context, m *Meeting) error {
	if m.ID == "" {
		return fmt.Errorf("meeting id is empty: %w", rerrors.ErrValidation)
	}

	participants, _ := json.Marshal(m.Participants)
	summary, err := json.Marshal(m.Summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	sentiment, err := json.Marshal(m.Sentiment)
	if err != nil {
		return fmt.Errorf("encoding sentiment: %w", err)
	}
	coaching, err := json.Marshal(m.Coaching)
	if err != nil {
		return fmt.Errorf("encoding coaching: %w", err)
	}
	tags, _ := json.Marshal(m.Tags)

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO meetings (
			id, title, date, participants, transcript, summary,
			sentiment, coaching, meeting_type, tags, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Date.Format(time.RFC3339), string(participants),
		m.Transcript, string(summary), string(sentiment), string(coaching),
		m.MeetingType, string(tags), createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing meeting: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meetings_fts WHERE id = ?`, m.ID); err != nil {
		return fmt.Errorf("refreshing search index: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO meetings_fts (id, title, transcript, summary_text, tags)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Transcript, summarySearchText(m.Summary), strings.Join(m.Tags, " "))
	if err != nil {
		return fmt.Errorf("indexing meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing meeting: %w", err)
	}

	s.log.Debug("meeting stored", logging.F("meeting_id", m.ID), logging.F("title", m.Title))
	return nil
}

const selectColumns = `id, title, date, participants, transcript, summary,
	sentiment, coaching, meeting_type, tags, created_at`

// Get fetches one meeting by ID.
func (s *Store) Get(ctx context.Context, id string) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("meeting %q: %w", id, rerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading meeting: %w", err)
	}
	return m, nil
}

// Recent returns the newest meetings, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Meeting, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM meetings ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	return collectMeetings(rows)
}

// Search runs a full-text query over titles, transcripts, summaries, and
// tags, ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Meeting, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty: %w", rerrors.ErrValidation)
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.title, m.date, m.participants, m.transcript, m.summary,
			m.sentiment, m.coaching, m.meeting_type, m.tags, m.created_at
		FROM meetings m
		JOIN meetings_fts fts ON m.id = fts.id
		WHERE meetings_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching meetings: %w", err)
	}
	return collectMeetings(rows)
}

// ByDateRange returns meetings with start <= date <= end, most recent first.
func (s *Store) ByDateRange(ctx context.Context, start, end time.Time) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM meetings
		WHERE date BETWEEN ? AND ?
		ORDER BY date DESC`,
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}
	return collectMeetings(rows)
}

// Delete removes a meeting and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM meetings_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting index entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("meeting %q: %w", id, rerrors.ErrNotFound)
	}
	s.log.Debug("meeting deleted", logging.F("meeting_id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMeeting(row rowScanner) (*Meeting, error) {
	var (
		m                         Meeting
		date, createdAt           string
		participants, tags        string
		summary, sentiment, coach string
		meetingType               sql.NullString
	)
	err := row.Scan(&m.ID, &m.Title, &date, &participants, &m.Transcript,
		&summary, &sentiment, &coach, &meetingType, &tags, &createdAt)
	if err != nil {
		return nil, err
	}

	if m.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return nil, fmt.Errorf("parsing meeting date: %w", err)
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(participants), &m.Participants); err != nil {
		return nil, fmt.Errorf("decoding participants: %w", err)
	}
	if err := json.Unmarshal([]byte(summary), &m.Summary); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	if err := json.Unmarshal([]byte(sentiment), &m.Sentiment); err != nil {
		return nil, fmt.Errorf("decoding sentiment: %w", err)
	}
	if err := json.Unmarshal([]byte(coach), &m.Coaching); err != nil {
		return nil, fmt.Errorf("decoding coaching: %w", err)
	}
	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	m.MeetingType = meetingType.String
	return &m, nil
}

func collectMeetings(rows *sql.Rows) ([]Meeting, error) {
	defer rows.Close()
	var out []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("reading meeting row: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// summarySearchText flattens the summary lists into one searchable string.
func summarySearchText(s analysis.SummaryRecord) string {
	var parts []string
	for _, kp := range s.KeyPoints {
		parts = append(parts, kp.Point)
	}
	for _, ai := range s.ActionItems {
		parts = append(parts, ai.Task, ai.Assignee)
	}
	for _, d := range s.Decisions {
		parts = append(parts, d.Decision)
	}
	return strings.Join(parts, " ")
}
