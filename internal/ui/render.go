package ui

import (
	"fmt"
	"strings"

	"github.com/thiagokokada/kaiten-timelog/internal/app"
	"github.com/thiagokokada/kaiten-timelog/internal/duration"
	"github.com/thiagokokada/kaiten-timelog/internal/git"
	"github.com/thiagokokada/kaiten-timelog/internal/journal"
)

const historyTimeLayout = "15:04"

func RenderItems(items []git.BranchWorkItem) string {
	if len(items) == 0 {
		return StyleDim.Render("No commits today.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Today's work"))
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s %s\n", StyleBold.Render(it.BranchName), StyleDim.Render(fmt.Sprintf("(card %d)", it.CardID)))
		for _, c := range it.Commits {
			fmt.Fprintf(&b, "  • %s\n", firstLine(c))
		}
	}
	return b.String()
}

func RenderReport(r app.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d\n",
		StyleGreen.Render("posted"), r.Posted,
		StyleRed.Render("failed"), r.Failed,
		StyleDim.Render("skipped"), r.Skipped,
	)
	if r.TotalMinutes > 0 {
		fmt.Fprintf(&b, "total %s\n", StyleBold.Render(duration.FromMinutes(r.TotalMinutes).String()))
	}
	for _, err := range r.Errors {
		fmt.Fprintf(&b, "  %s %v\n", StyleRed.Render("✗"), err)
	}
	return b.String()
}

// RenderDayStatus renders the "logged X of Y working hours" line.
func RenderDayStatus(st app.DayStatus) string {
	style := StyleYellow
	if st.Logged.TotalMinutes() >= st.Expected.TotalMinutes() {
		style = StyleGreen
	}
	return fmt.Sprintf("logged %s of %s working hours\n",
		style.Render(duration.Format(st.Logged)),
		duration.Format(st.Expected),
	)
}

func RenderHistory(st app.DayStatus) string {
	if len(st.Entries) == 0 {
		return StyleDim.Render("Nothing logged.") + "\n" + RenderDayStatus(st)
	}
	var b strings.Builder
	b.WriteString(Header("Time logs"))
	b.WriteString("\n")
	for _, e := range st.Entries {
		mark := StyleGreen.Render("✓")
		if e.Status == journal.StatusFailed {
			mark = StyleRed.Render("✗")
		}
		fmt.Fprintf(&b, "%s %s %s %s",
			mark,
			StyleDim.Render(e.PostedAt.Local().Format(historyTimeLayout)),
			StyleBlue.Render(fmt.Sprintf("#%d", e.CardID)),
			duration.FromMinutes(e.Minutes),
		)
		if e.Description != "" {
			fmt.Fprintf(&b, "  %s", firstLine(e.Description))
		}
		if e.Error != "" {
			fmt.Fprintf(&b, "  %s", StyleRed.Render(e.Error))
		}
		b.WriteString("\n")
	}
	b.WriteString(RenderDayStatus(st))
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
