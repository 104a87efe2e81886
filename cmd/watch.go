package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/calendar"
	"github.com/thiagokokada/kaiten-timelog/internal/config"
	"github.com/thiagokokada/kaiten-timelog/internal/git"
	"github.com/thiagokokada/kaiten-timelog/internal/reminder"
	"github.com/thiagokokada/kaiten-timelog/internal/ui"
)

func newWatchCmd(o *options) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay running and ask for time logs at the reminder time",
		Long: `Watches the repository for new commits and, at reminder.time on working
days, runs the log flow. Config file changes are picked up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := o.config(); err != nil {
				return err
			}
			return o.watch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", reminder.DefaultInterval, "how often to check the reminder time")

	return cmd
}

func (o *options) watch(ctx context.Context, interval time.Duration) error {
	store := o.store
	if err := store.Watch(); err != nil {
		slog.Warn("config changes will need a restart", slog.Any("error", err))
	}
	store.OnChange(func(cfg *config.Config) {
		slog.Info("config reloaded",
			slog.String("reminder", cfg.Reminder.Time),
			slog.Bool("ai", cfg.AI.Enabled),
		)
	})

	cfg := store.Current()
	sc, err := o.openScanner(cfg)
	if err != nil {
		return err
	}
	user, err := currentUser(cfg, sc)
	if err != nil {
		return err
	}

	cache := &workCache{}
	rescan := func() {
		now := o.now()
		items, err := sc.Scan(ctx, user, now)
		if err != nil {
			slog.Error("rescan failed", slog.Any("error", err))
			return
		}
		cache.store(now, items)
		commits := 0
		for _, it := range items {
			commits += len(it.Commits)
		}
		slog.Info("repository scanned", slog.Int("branches", len(items)), slog.Int("commits", commits))
	}
	rescan()

	w, err := git.Watch(sc.RepoPath(), git.WatchDebounceDelay, rescan)
	if err != nil {
		return err
	}
	defer w.Close()

	sched := &reminder.Scheduler{
		Interval: interval,
		Now:      o.now,
		Check:    reminderDue(store),
		Fire: func(ctx context.Context) {
			if err := o.remind(ctx, store.Current(), cache); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("time logging failed", slog.Any("error", err))
			}
		},
	}
	slog.Info("watching",
		slog.String("repo", sc.RepoPath()),
		slog.String("reminder", cfg.Reminder.Time),
	)
	err = sched.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reminderDue reads the current snapshot on every check so reloads apply
// immediately.
func reminderDue(store *config.Store) func(time.Time) bool {
	return func(now time.Time) bool {
		cfg := store.Current()
		cal := calendar.New(cfg.Holidays())
		return cal.ShouldNotify(now, cfg.Reminder.Time, cfg.Reminder.WorkdaysOnly)
	}
}

// workCache holds the latest rescan so a reminder can list today's work
// without reading the repository again.
type workCache struct {
	mu    sync.Mutex
	day   time.Time
	items []git.BranchWorkItem
	valid bool
}

func (c *workCache) store(now time.Time, items []git.BranchWorkItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = git.DayStart(now)
	c.items = items
	c.valid = true
}

// load returns the cached items when they were scanned on the same day as now.
func (c *workCache) load(now time.Time) ([]git.BranchWorkItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || !c.day.Equal(git.DayStart(now)) {
		return nil, false
	}
	return c.items, true
}

func (o *options) remind(ctx context.Context, cfg *config.Config, cache *workCache) error {
	if o.interactive() {
		ok, err := ui.Confirm("Time to log today's work. Start now?")
		if err != nil || !ok {
			return err
		}
		return o.logFlow(ctx, cfg, nil, false)
	}
	items, ok := cache.load(o.now())
	if !ok {
		c, err := o.build(cfg, wants{scanner: true})
		if err != nil {
			return err
		}
		defer c.Close()
		items, err = c.scanner.Scan(ctx, c.app.User, o.now())
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(o.stdout, ui.StyleYellow.Render("Time to log today's work: run kaiten-timelog log"))
	fmt.Fprint(o.stdout, ui.RenderItems(items))
	return nil
}
