// Package app wires scanning, summarizing and posting into the end-of-day
// time logging flow.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thiagokokada/kaiten-timelog/internal/duration"
	"github.com/thiagokokada/kaiten-timelog/internal/git"
	"github.com/thiagokokada/kaiten-timelog/internal/journal"
	"github.com/thiagokokada/kaiten-timelog/internal/tracker"
)

type Scanner interface {
	Scan(ctx context.Context, currentUser string, reference time.Time) ([]git.BranchWorkItem, error)
}

type Tracker interface {
	AddTimeLog(ctx context.Context, l tracker.TimeLog) error
}

type Summarizer interface {
	Available(ctx context.Context) bool
	Summarize(ctx context.Context, commits []string) (string, error)
}

type Journal interface {
	Record(ctx context.Context, e journal.Entry) (journal.Entry, error)
	ListDay(ctx context.Context, day time.Time) ([]journal.Entry, error)
	TotalMinutes(ctx context.Context, day time.Time) (int, error)
}

// App is built once per command from the loaded configuration. Summarizer
// and Journal are optional.
type App struct {
	Scanner    Scanner
	Tracker    Tracker
	Summarizer Summarizer
	Journal    Journal

	// User is the commit author name that counts as "me".
	User         string
	RoleID       int
	WorkingHours float64
	Now          func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Draft is a scanned branch waiting for a duration.
type Draft struct {
	Item       git.BranchWorkItem
	Summary    string
	SummaryErr error
}

// Description is the summary when one was generated, otherwise the raw
// commit messages one per line.
func (d Draft) Description() string {
	if d.Summary != "" {
		return d.Summary
	}
	return strings.Join(d.Item.Commits, "\n")
}

// Progress is called before each summary with the number already done.
type Progress func(done, total int, branch string)

// Prepare scans today's work and, when a summarizer is configured and
// reachable, summarizes each branch in turn. A failed summary leaves the
// draft with its raw commits.
func (a *App) Prepare(ctx context.Context, progress Progress) ([]Draft, error) {
	if a.User == "" {
		return nil, errors.New("current git user is unknown: set git.user or user.name")
	}
	items, err := a.Scanner.Scan(ctx, a.User, a.now())
	if err != nil {
		return nil, err
	}
	drafts := make([]Draft, len(items))
	for i, item := range items {
		drafts[i] = Draft{Item: item}
	}
	if a.Summarizer == nil || len(drafts) == 0 || !a.Summarizer.Available(ctx) {
		return drafts, nil
	}

	for i := range drafts {
		if progress != nil {
			progress(i, len(drafts), drafts[i].Item.BranchName)
		}
		summary, err := a.Summarizer.Summarize(ctx, drafts[i].Item.Commits)
		if err != nil {
			slog.Warn("summary failed, using commit messages",
				slog.String("branch", drafts[i].Item.BranchName),
				slog.Any("error", err),
			)
			drafts[i].SummaryErr = err
			continue
		}
		drafts[i].Summary = summary
	}
	if progress != nil {
		progress(len(drafts), len(drafts), "")
	}
	return drafts, nil
}

// Entry is one time log the user confirmed. Time is the raw text typed;
// it is validated by Submit.
type Entry struct {
	CardID      int
	Branch      string
	Time        string
	Description string
}

type Report struct {
	Posted       int
	Failed       int
	Skipped      int
	TotalMinutes int
	Errors       []error
}

func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// Submit validates and posts every entry. Entries with an empty or zero
// duration are skipped; a failure never stops the remaining entries.
func (a *App) Submit(ctx context.Context, entries []Entry) Report {
	var rep Report
	day := a.now()
	for _, e := range entries {
		d, err := duration.ParseValid(e.Time)
		if err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, fmt.Errorf("card %d: %w", e.CardID, err))
			continue
		}
		if d.IsZero() {
			rep.Skipped++
			continue
		}

		err = a.Tracker.AddTimeLog(ctx, tracker.TimeLog{
			CardID:  e.CardID,
			Minutes: d.TotalMinutes(),
			RoleID:  a.RoleID,
			Date:    day,
			Comment: e.Description,
		})
		a.record(ctx, e, d, day, err)
		if err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, err)
			continue
		}
		rep.Posted++
		rep.TotalMinutes += d.TotalMinutes()
	}
	slog.Info("time logs submitted",
		slog.Int("posted", rep.Posted),
		slog.Int("failed", rep.Failed),
		slog.Int("skipped", rep.Skipped),
	)
	return rep
}

func (a *App) record(ctx context.Context, e Entry, d duration.Duration, day time.Time, postErr error) {
	if a.Journal == nil {
		return
	}
	je := journal.Entry{
		CardID:      e.CardID,
		Branch:      e.Branch,
		Minutes:     d.TotalMinutes(),
		Description: e.Description,
		Date:        day,
		Status:      journal.StatusPosted,
	}
	if postErr != nil {
		je.Status = journal.StatusFailed
		je.Error = postErr.Error()
	}
	if _, err := a.Journal.Record(ctx, je); err != nil {
		slog.Error("journal write failed", slog.Int("card", e.CardID), slog.Any("error", err))
	}
}

// DayStatus is how much of the working day is already logged.
type DayStatus struct {
	Logged   duration.Duration
	Expected duration.Duration
	Entries  []journal.Entry
}

// Today reads the journal for the current day. Without a journal it
// reports nothing logged.
func (a *App) Today(ctx context.Context) (DayStatus, error) {
	st := DayStatus{Expected: duration.FromMinutes(int(a.WorkingHours * 60))}
	if a.Journal == nil {
		return st, nil
	}
	day := a.now()
	entries, err := a.Journal.ListDay(ctx, day)
	if err != nil {
		return st, err
	}
	total, err := a.Journal.TotalMinutes(ctx, day)
	if err != nil {
		return st, err
	}
	st.Entries = entries
	st.Logged = duration.FromMinutes(total)
	return st, nil
}
