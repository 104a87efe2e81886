// Package calendar decides whether a day is a working day and whether the
// end-of-day reminder is due.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Calendar struct {
	holidays map[civilDate]struct{}
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

// New builds a calendar with the given non-working dates. Only the date
// part of each holiday is used.
func New(holidays []time.Time) *Calendar {
	c := &Calendar{holidays: make(map[civilDate]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[dateOf(h)] = struct{}{}
	}
	return c
}

// IsWorkingDay reports whether t falls on Monday to Friday and is not a
// holiday.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if c == nil {
		return true
	}
	_, holiday := c.holidays[dateOf(t)]
	return !holiday
}

// InWindow reports whether now is within the hour after hh:mm: the target
// hour from mm on, or the next hour up to mm.
func InWindow(now time.Time, hh, mm int) bool {
	h, m := now.Hour(), now.Minute()
	switch h {
	case hh:
		return m >= mm
	case (hh + 1) % 24:
		return m <= mm
	}
	return false
}

// ShouldNotify combines IsWorkingDay and InWindow for a "HH:MM" target.
// A malformed target never notifies.
func (c *Calendar) ShouldNotify(now time.Time, target string, workdaysOnly bool) bool {
	hh, mm, err := ParseClock(target)
	if err != nil {
		return false
	}
	if workdaysOnly && !c.IsWorkingDay(now) {
		return false
	}
	return InWindow(now, hh, mm)
}

// ParseClock parses "HH:MM" with hours 0-23 and minutes 0-59.
func ParseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 || len(ms) != 2 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
