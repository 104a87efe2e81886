// Package journal keeps a local SQLite record of every time log the tool
// tried to post.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	Memory     = ":memory:"
	dayLayout  = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

type Status string

const (
	StatusPosted Status = "posted"
	StatusFailed Status = "failed"
)

type Entry struct {
	ID          uuid.UUID
	CardID      int
	Branch      string // empty for manual entries
	Minutes     int
	Description string
	Date        time.Time // the day the time is logged for
	PostedAt    time.Time
	Status      Status
	Error       string
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS time_logs (
		id          TEXT PRIMARY KEY,
		card_id     INTEGER NOT NULL,
		branch      TEXT NOT NULL DEFAULT '',
		minutes     INTEGER NOT NULL CHECK (minutes >= 0),
		description TEXT NOT NULL DEFAULT '',
		for_date    TEXT NOT NULL,
		posted_at   TEXT NOT NULL,
		status      TEXT NOT NULL CHECK (status IN ('posted', 'failed')),
		error       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_time_logs_for_date ON time_logs (for_date)`,
}

type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path. Memory gives a throwaway
// in-memory journal.
func Open(path string) (*Journal, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if path != Memory {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting WAL mode: %w", err)
		}
	}
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal migration %d: %w", i, err)
		}
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores e, filling in ID, PostedAt and Status when unset.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.PostedAt.IsZero() {
		e.PostedAt = time.Now()
	}
	if e.Date.IsZero() {
		e.Date = e.PostedAt
	}
	if e.Status == "" {
		e.Status = StatusPosted
		if e.Error != "" {
			e.Status = StatusFailed
		}
	}
	query := `INSERT INTO time_logs (id, card_id, branch, minutes, description, for_date, posted_at, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := j.db.ExecContext(ctx, query,
		e.ID.String(),
		e.CardID,
		e.Branch,
		e.Minutes,
		e.Description,
		e.Date.Format(dayLayout),
		e.PostedAt.Format(timeLayout),
		string(e.Status),
		e.Error,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting time log: %w", err)
	}
	return e, nil
}

// ListDay returns the entries logged for day's date, oldest first.
func (j *Journal) ListDay(ctx context.Context, day time.Time) ([]Entry, error) {
	query := `SELECT id, card_id, branch, minutes, description, for_date, posted_at, status, error
		FROM time_logs WHERE for_date = ? ORDER BY posted_at, rowid`
	rows, err := j.db.QueryContext(ctx, query, day.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("listing time logs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows, day.Location())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing time logs: %w", err)
	}
	return out, nil
}

// TotalMinutes sums the successfully posted minutes for day's date.
func (j *Journal) TotalMinutes(ctx context.Context, day time.Time) (int, error) {
	var total sql.NullInt64
	err := j.db.QueryRowContext(ctx,
		`SELECT SUM(minutes) FROM time_logs WHERE for_date = ? AND status = ?`,
		day.Format(dayLayout), string(StatusPosted),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing time logs: %w", err)
	}
	return int(total.Int64), nil
}

func scanEntry(rows *sql.Rows, loc *time.Location) (Entry, error) {
	var (
		e                Entry
		id, date, posted string
		status           string
	)
	if err := rows.Scan(&id, &e.CardID, &e.Branch, &e.Minutes, &e.Description, &date, &posted, &status, &e.Error); err != nil {
		return Entry{}, fmt.Errorf("scanning time log: %w", err)
	}
	var errs []error
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		errs = append(errs, err)
	}
	if e.Date, err = time.ParseInLocation(dayLayout, date, loc); err != nil {
		errs = append(errs, err)
	}
	if e.PostedAt, err = time.Parse(timeLayout, posted); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return Entry{}, fmt.Errorf("decoding time log %s: %w", id, err)
	}
	e.Status = Status(status)
	return e, nil
}
