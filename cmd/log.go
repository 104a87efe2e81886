package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/kaiten-timelog/internal/app"
	"github.com/thiagokokada/kaiten-timelog/internal/config"
	"github.com/thiagokokada/kaiten-timelog/internal/duration"
	"github.com/thiagokokada/kaiten-timelog/internal/git"
	"github.com/thiagokokada/kaiten-timelog/internal/ui"
)

var errNoTerminal = errors.New("not a terminal: pass durations with --time BRANCH=DURATION")

func newLogCmd(o *options) *cobra.Command {
	var (
		times  []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log time for today's branches",
		Long: `Scans today's commits, optionally summarizes them, asks for the time spent
on each branch and posts the time logs to Kaiten.

Without a terminal, durations come from --time flags; branches without one
are skipped. The key may be the branch name or the card id.`,
		Example: "  kaiten-timelog log --time ABCD-1234=1h30m --time 5678=45m",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			return o.logFlow(cmd.Context(), cfg, times, dryRun)
		},
	}

	cmd.Flags().StringArrayVarP(&times, "time", "t", nil, "BRANCH=DURATION or CARD=DURATION (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be logged without posting")

	return cmd
}

func (o *options) logFlow(ctx context.Context, cfg *config.Config, times []string, dryRun bool) error {
	c, err := o.build(cfg, wants{scanner: true, tracker: !dryRun})
	if err != nil {
		return err
	}
	defer c.Close()

	drafts, err := c.app.Prepare(ctx, func(done, total int, branch string) {
		if branch != "" {
			fmt.Fprintf(o.stderr, "summarizing %d/%d %s\n", done+1, total, branch)
		}
	})
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Fprint(o.stdout, ui.RenderItems(nil))
		return nil
	}

	var entries []app.Entry
	switch {
	case len(times) > 0:
		entries, err = entriesFromFlags(drafts, times)
	case o.interactive():
		entries, err = ui.NewLogForm(drafts).Run()
	default:
		fmt.Fprint(o.stdout, ui.RenderItems(itemsOf(drafts)))
		err = errNoTerminal
	}
	if errors.Is(err, ui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	if dryRun {
		return printDryRun(o, entries)
	}
	rep := c.app.Submit(ctx, entries)
	fmt.Fprint(o.stdout, ui.RenderReport(rep))
	if st, err := c.app.Today(ctx); err == nil {
		fmt.Fprint(o.stdout, ui.RenderDayStatus(st))
	}
	if rep.Failed > 0 {
		return fmt.Errorf("%d time log(s) failed", rep.Failed)
	}
	return nil
}

// entriesFromFlags maps KEY=DURATION specs onto drafts. Drafts without a
// spec are left out.
func entriesFromFlags(drafts []app.Draft, specs []string) ([]app.Entry, error) {
	byKey := make(map[string]int, 2*len(drafts))
	for i, d := range drafts {
		byKey[d.Item.BranchName] = i
		byKey[strconv.Itoa(d.Item.CardID)] = i
	}
	times := make(map[int]string, len(specs))
	for _, spec := range specs {
		key, val, ok := strings.Cut(spec, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--time %q: want BRANCH=DURATION", spec)
		}
		i, found := byKey[key]
		if !found {
			return nil, fmt.Errorf("--time %q: no commits today on %s", spec, key)
		}
		times[i] = strings.TrimSpace(val)
	}

	entries := make([]app.Entry, 0, len(times))
	for i, d := range drafts {
		t, ok := times[i]
		if !ok {
			continue
		}
		entries = append(entries, app.Entry{
			CardID:      d.Item.CardID,
			Branch:      d.Item.BranchName,
			Time:        t,
			Description: d.Description(),
		})
	}
	return entries, nil
}

func printDryRun(o *options, entries []app.Entry) error {
	var errs []error
	for _, e := range entries {
		d, err := duration.ParseValid(e.Time)
		if err != nil {
			errs = append(errs, fmt.Errorf("card %d: %w", e.CardID, err))
			continue
		}
		if d.IsZero() {
			fmt.Fprintf(o.stdout, "skip  #%d %s\n", e.CardID, e.Branch)
			continue
		}
		fmt.Fprintf(o.stdout, "would log %s to #%d %s\n", duration.Format(d), e.CardID, e.Branch)
	}
	return errors.Join(errs...)
}

func itemsOf(drafts []app.Draft) []git.BranchWorkItem {
	items := make([]git.BranchWorkItem, len(drafts))
	for i, d := range drafts {
		items[i] = d.Item
	}
	return items
}
