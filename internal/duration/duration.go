// Package duration parses the free-form time strings typed into time-log
// prompts and renders them in the canonical H.MM form.
package duration

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// MaxHours is the largest hour value accepted by Valid.
const MaxHours = 24

// Hint lists the accepted input forms. Prompts show it when validation fails.
const Hint = `use one of: "1:30", "1.30", "1h30m", "1ч 30м", "1.5h", "90m", "2" (hours)`

var (
	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("unrecognized duration")
	// ErrOutOfRange matches every *RangeError.
	ErrOutOfRange = errors.New("duration out of range")
)

// FormatError reports input that matches none of the recognized grammars.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized duration %q: %s", e.Input, Hint)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// RangeError reports a well-formed duration outside 0..24h.
type RangeError struct {
	Value Duration
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("duration %s out of range: hours must be 0-%d, minutes 0-59", e.Value, MaxHours)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// Duration is an hours/minutes pair with Minutes kept in 0..59.
// The zero value means "no time entered".
type Duration struct {
	Hours   int
	Minutes int
}

// FromMinutes builds a normalized Duration from a minute count.
// Negative input yields the zero Duration.
func FromMinutes(total int) Duration {
	if total <= 0 {
		return Duration{}
	}
	return Duration{Hours: total / 60, Minutes: total % 60}
}

func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Minutes == 0
}

// Valid reports whether d fits the range the tracker accepts for a single day.
func (d Duration) Valid() bool {
	return d.Hours >= 0 && d.Hours <= MaxHours && d.Minutes >= 0 && d.Minutes <= 59
}

func (d Duration) String() string {
	switch {
	case d.Hours > 0 && d.Minutes > 0:
		return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
	case d.Hours > 0:
		return fmt.Sprintf("%dh", d.Hours)
	default:
		return fmt.Sprintf("%dm", d.Minutes)
	}
}

// Format renders d in the canonical H.MM form ("1.05" for one hour five minutes).
func Format(d Duration) string {
	return fmt.Sprintf("%d.%02d", d.Hours, d.Minutes)
}

// Grammars in priority order. Several are prefixes of others, so the order
// must not change.
var (
	clockRe    = regexp.MustCompile(`^(\d+):(\d+)$`)
	canonRe    = regexp.MustCompile(`^(\d+)\.(\d{2})$`)
	compactRe  = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)[hч](\d+)[mм]$`)
	spacedRe   = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)[hч]\s+(\d+)[mм]$`)
	hoursRe    = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)[hч]$`)
	minutesRe  = regexp.MustCompile(`(?i)^(\d+)[mм]$`)
	bareHourRe = regexp.MustCompile(`^(\d+)$`)
)

// Parse reads text in any of the recognized grammars. Empty or blank text
// yields the zero Duration and no error. Parse does not check the range;
// see ParseValid.
//
// A fractional hour token combined with an explicit minute token adds both
// contributions: "1.5h30m" is two hours.
func Parse(text string) (Duration, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Duration{}, nil
	}
	fail := &FormatError{Input: text}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		return clock(fail, m[1], m[2], false)
	}
	// The canonical H.MM form exists so that Format output parses back. Only
	// two-digit minutes up to 59 qualify: "1.5" without a unit is ambiguous
	// and "1.60" is not something Format produces.
	if m := canonRe.FindStringSubmatch(s); m != nil {
		return clock(fail, m[1], m[2], true)
	}
	for _, re := range []*regexp.Regexp{compactRe, spacedRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			hourMins, err := hoursToMinutes(m[1])
			if err != nil {
				return Duration{}, fail
			}
			mins, err := strconv.Atoi(m[2])
			if err != nil {
				return Duration{}, fail
			}
			return combine(fail, hourMins, 1, mins)
		}
	}
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		hourMins, err := hoursToMinutes(m[1])
		if err != nil {
			return Duration{}, fail
		}
		return combine(fail, hourMins, 1, 0)
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, err := strconv.Atoi(m[1])
		if err != nil {
			return Duration{}, fail
		}
		return combine(fail, 0, 1, mins)
	}
	if m := bareHourRe.FindStringSubmatch(s); m != nil {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return Duration{}, fail
		}
		return combine(fail, h, 60, 0)
	}
	return Duration{}, fail
}

// ParseValid is Parse followed by the range check callers apply before
// submitting a time log.
func ParseValid(text string) (Duration, error) {
	d, err := Parse(text)
	if err != nil {
		return Duration{}, err
	}
	if !d.Valid() {
		return Duration{}, &RangeError{Value: d}
	}
	return d, nil
}

// clock handles the H:MM and H.MM grammars. H:MM minutes roll over into
// hours; strict rejects minutes above 59.
func clock(fail *FormatError, hours, minutes string, strict bool) (Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return Duration{}, fail
	}
	mins, err := strconv.Atoi(minutes)
	if err != nil || (strict && mins > 59) {
		return Duration{}, fail
	}
	return combine(fail, h, 60, mins)
}

// hoursToMinutes converts an hour token, possibly fractional, to whole
// minutes truncated toward zero. The fraction is computed exactly; in
// floating point 2.05*60 falls just below 123.
func hoursToMinutes(token string) (int, error) {
	whole, frac, _ := strings.Cut(strings.ReplaceAll(token, ",", "."), ".")
	h, err := strconv.Atoi(whole)
	if err != nil {
		return 0, err
	}
	if h > maxTotalMinutes/60 {
		return 0, fmt.Errorf("hour value %s too large", token)
	}
	mins := h * 60
	if frac == "" {
		return mins, nil
	}
	num, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return 0, fmt.Errorf("hour fraction %q is not a number", frac)
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(frac))), nil)
	num.Mul(num, big.NewInt(60)).Quo(num, den)
	return mins + int(num.Int64()), nil
}

// maxTotalMinutes bounds intermediate arithmetic; anything larger is not a
// plausible time entry and is reported as a format error.
const maxTotalMinutes = math.MaxInt32

// combine computes base*scale+extra minutes and normalizes the result.
func combine(fail *FormatError, base, scale, extra int) (Duration, error) {
	if base < 0 || extra < 0 || base > maxTotalMinutes/scale {
		return Duration{}, fail
	}
	total := base*scale + extra
	if total > maxTotalMinutes || total < 0 {
		return Duration{}, fail
	}
	return Duration{Hours: total / 60, Minutes: total % 60}, nil
}
