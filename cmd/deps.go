package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/thiagokokada/kaiten-timelog/internal/app"
	"github.com/thiagokokada/kaiten-timelog/internal/config"
	"github.com/thiagokokada/kaiten-timelog/internal/git"
	"github.com/thiagokokada/kaiten-timelog/internal/journal"
	"github.com/thiagokokada/kaiten-timelog/internal/llm"
	"github.com/thiagokokada/kaiten-timelog/internal/tracker"
)

func (o *options) repoPath(cfg *config.Config) string {
	if o.repo != "" {
		return o.repo
	}
	return cfg.Git.RepoPath
}

func (o *options) openScanner(cfg *config.Config) (*git.Scanner, error) {
	kind, err := git.ParseBackendKind(cfg.Git.Backend)
	if err != nil {
		return nil, err
	}
	return git.Open(o.repoPath(cfg), kind)
}

// currentUser prefers git.user and falls back to the repository's user.name.
func currentUser(cfg *config.Config, sc *git.Scanner) (string, error) {
	if cfg.Git.User != "" {
		return cfg.Git.User, nil
	}
	name, err := sc.UserName()
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("git user.name is not set: configure it or set git.user")
	}
	return name, nil
}

func newTracker(cfg *config.Config) (*tracker.Client, error) {
	if err := cfg.RequireTracker(); err != nil {
		return nil, err
	}
	return tracker.New(tracker.Config{
		URL:    cfg.Kaiten.URL,
		Token:  cfg.Kaiten.Token,
		RoleID: cfg.Kaiten.RoleID,
	}), nil
}

func newSummarizer(cfg *config.Config) (*llm.Summarizer, error) {
	if !cfg.AI.Enabled {
		return nil, nil
	}
	p, err := llm.NewProvider(llm.Config{
		Provider:   cfg.AI.Provider,
		Model:      cfg.AI.Model,
		Endpoint:   cfg.AI.Endpoint,
		APIKey:     cfg.AI.APIKey,
		FolderID:   cfg.AI.FolderID,
		Timeout:    cfg.AI.Timeout,
		MaxRetries: cfg.AI.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("summaries: %w", err)
	}
	return llm.NewSummarizer(p, llm.ParseLanguage(cfg.AI.Language)), nil
}

func openJournal(cfg *config.Config) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path)
}

// components is everything a command may need; unused parts stay nil.
type components struct {
	app     *app.App
	scanner *git.Scanner
	tracker *tracker.Client
	journal *journal.Journal
}

func (c *components) Close() error {
	if c.journal != nil {
		return c.journal.Close()
	}
	return nil
}

type wants struct {
	scanner bool
	tracker bool
}

func (o *options) build(cfg *config.Config, w wants) (*components, error) {
	c := &components{}
	a := &app.App{
		RoleID:       cfg.Kaiten.RoleID,
		WorkingHours: cfg.WorkingHours,
		Now:          o.now,
	}
	if w.scanner {
		sc, err := o.openScanner(cfg)
		if err != nil {
			return nil, err
		}
		user, err := currentUser(cfg, sc)
		if err != nil {
			return nil, err
		}
		c.scanner = sc
		a.Scanner = sc
		a.User = user

		sum, err := newSummarizer(cfg)
		if err != nil {
			slog.Warn("summaries disabled", slog.Any("error", err))
		} else if sum != nil {
			a.Summarizer = sum
		}
	}
	if w.tracker {
		tc, err := newTracker(cfg)
		if err != nil {
			return nil, err
		}
		c.tracker = tc
		a.Tracker = tc
	}
	j, err := openJournal(cfg)
	if err != nil {
		slog.Warn("journal unavailable", slog.Any("error", err))
	} else if j != nil {
		c.journal = j
		a.Journal = j
	}
	c.app = a
	return c, nil
}
