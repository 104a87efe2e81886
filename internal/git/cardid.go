package git

import (
	"regexp"
	"strconv"
)

var cardIDRe = regexp.MustCompile(`[^-]+-(\d+)`)

// ExtractCardID returns the number following the first hyphen in branch
// that is followed by digits: "ABCD-123_fix" is 123, "team-1-sub-2" is 1.
// Digit runs too large for int count as no id.
func ExtractCardID(branch string) (int, bool) {
	m := cardIDRe.FindStringSubmatch(branch)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
