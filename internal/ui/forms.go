package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/thiagokokada/kaiten-timelog/internal/app"
	"github.com/thiagokokada/kaiten-timelog/internal/duration"
	"github.com/thiagokokada/kaiten-timelog/internal/tracker"
)

// ErrAborted is returned when the user quits a form.
var ErrAborted = huh.ErrUserAborted

func validateDuration(s string) error {
	_, err := duration.ParseValid(s)
	if err != nil {
		var fe *duration.FormatError
		if errors.As(err, &fe) {
			return errors.New(duration.Hint)
		}
	}
	return err
}

func validateCard(s string) error {
	if _, ok := ParseCard(s); !ok {
		return errors.New("enter a card id or paste the card URL")
	}
	return nil
}

// ParseCard accepts a pasted card URL or a plain positive id.
func ParseCard(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if id, ok := tracker.ParseCardReference(s); ok {
		return id, true
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type logRow struct {
	draft       app.Draft
	time        string
	description string
}

// LogForm asks for a duration and a description for every draft. Leaving a
// duration empty skips that branch.
type LogForm struct {
	form *huh.Form
	rows []*logRow
}

func NewLogForm(drafts []app.Draft) *LogForm {
	f := &LogForm{}
	groups := make([]*huh.Group, 0, len(drafts))
	for _, d := range drafts {
		row := &logRow{draft: d, description: d.Description()}
		f.rows = append(f.rows, row)

		desc := fmt.Sprintf("card %d, %d commit(s)", d.Item.CardID, len(d.Item.Commits))
		if d.SummaryErr != nil {
			desc += ", summary unavailable"
		}
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title(d.Item.BranchName).
				Description(desc).
				Placeholder("1h30m").
				Value(&row.time).
				Validate(validateDuration),
			huh.NewText().
				Title("Description").
				Lines(4).
				Value(&row.description),
		))
	}
	if len(groups) > 0 {
		f.form = huh.NewForm(groups...).WithTheme(theme()).WithShowHelp(true)
	}
	return f
}

func (f *LogForm) Run() ([]app.Entry, error) {
	if f.form == nil {
		return nil, nil
	}
	if err := f.form.Run(); err != nil {
		return nil, err
	}
	return f.Entries(), nil
}

// Entries returns the values currently held by the form.
func (f *LogForm) Entries() []app.Entry {
	entries := make([]app.Entry, 0, len(f.rows))
	for _, r := range f.rows {
		entries = append(entries, app.Entry{
			CardID:      r.draft.Item.CardID,
			Branch:      r.draft.Item.BranchName,
			Time:        strings.TrimSpace(r.time),
			Description: strings.TrimSpace(r.description),
		})
	}
	return entries
}

// ManualForm collects a single entry for a card that has no branch.
type ManualForm struct {
	form        *huh.Form
	card        string
	time        string
	description string
}

func NewManualForm() *ManualForm {
	f := &ManualForm{}
	f.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Card").
			Description("card id or URL").
			Value(&f.card).
			Validate(validateCard),
		huh.NewInput().
			Title("Time").
			Placeholder("1h30m").
			Value(&f.time).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("time is required")
				}
				return validateDuration(s)
			}),
		huh.NewText().
			Title("Description").
			Lines(3).
			Value(&f.description),
	)).WithTheme(theme()).WithShowHelp(true)
	return f
}

func (f *ManualForm) Run() (app.Entry, error) {
	if err := f.form.Run(); err != nil {
		return app.Entry{}, err
	}
	return f.Entry()
}

func (f *ManualForm) Entry() (app.Entry, error) {
	id, ok := ParseCard(f.card)
	if !ok {
		return app.Entry{}, fmt.Errorf("invalid card reference %q", f.card)
	}
	return app.Entry{
		CardID:      id,
		Time:        strings.TrimSpace(f.time),
		Description: strings.TrimSpace(f.description),
	}, nil
}

// Confirm asks a yes/no question, defaulting to yes.
func Confirm(title string) (bool, error) {
	ok := true
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok),
	)).WithTheme(theme()).WithShowHelp(false).Run()
	return ok, err
}
