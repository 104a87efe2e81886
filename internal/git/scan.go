package git

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	gitbackend "github.com/thiagokokada/kaiten-timelog/internal/git/backend"
)

type Scanner struct {
	// mu serializes scans; backends keep per-walk state.
	mu sync.Mutex

	backend Backend
}

func NewScanner(backend Backend) *Scanner {
	return &Scanner{backend: backend}
}

// Open opens the repository containing path with the given backend.
func Open(path string, kind BackendKind) (*Scanner, error) {
	b, err := gitbackend.Open(path, kind)
	if err != nil {
		return nil, &ScanError{Path: path, Op: "open", Err: err}
	}
	slog.Debug("repository opened",
		slog.String("path", b.RepoPath()),
		slog.String("backend", string(kind)),
	)
	return NewScanner(b), nil
}

func (s *Scanner) RepoPath() string {
	return s.backend.RepoPath()
}

// UserName returns the repository's configured user.name.
func (s *Scanner) UserName() (string, error) {
	name, err := s.backend.UserName()
	if err != nil {
		return "", &ScanError{Path: s.backend.RepoPath(), Op: "config", Err: err}
	}
	return name, nil
}

// DayStart returns local midnight of t's day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Scan collects, per local branch, the commits authored by currentUser on
// the calendar day of reference. Branches without such commits or without a
// card id in their name are left out. Every call reads the repository again.
func (s *Scanner) Scan(ctx context.Context, currentUser string, reference time.Time) ([]BranchWorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStart := DayStart(reference)
	slog.Debug("scan start",
		slog.String("user", currentUser),
		slog.Time("since", dayStart),
	)

	branches, err := s.backend.Branches(ctx)
	if err != nil {
		return nil, &ScanError{Path: s.backend.RepoPath(), Op: "list branches", Err: err}
	}

	items := make([]BranchWorkItem, 0, len(branches))
	for _, br := range branches {
		if br.TipTime.Before(dayStart) {
			continue
		}
		cardID, ok := ExtractCardID(br.Name)
		if !ok {
			slog.Debug("branch has no card id", slog.String("branch", br.Name))
			continue
		}
		msgs, err := s.branchMessages(ctx, br, currentUser, dayStart)
		if err != nil {
			return nil, &ScanError{Path: s.backend.RepoPath(), Op: "walk " + br.Name, Err: err}
		}
		if len(msgs) == 0 {
			continue
		}
		items = append(items, BranchWorkItem{BranchName: br.Name, CardID: cardID, Commits: msgs})
	}
	slog.Debug("scan done", slog.Int("branches", len(branches)), slog.Int("items", len(items)))
	return items, nil
}

// branchMessages walks br newest first and stops at the first commit
// committed before dayStart.
func (s *Scanner) branchMessages(ctx context.Context, br Branch, user string, dayStart time.Time) (msgs []string, err error) {
	stream, err := s.backend.StartLogStream(ctx, br.Hash)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for {
		c, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if c.Committer.When.Before(dayStart) {
			break
		}
		if c.Author.Name != user {
			continue
		}
		msgs = append(msgs, strings.TrimSpace(c.Message))
	}
	slices.Reverse(msgs)
	return msgs, nil
}
