package tracker

import (
	"regexp"
	"strconv"
	"strings"
)

// Card links look like https://acme.kaiten.ru/space/1/card/12345678 or
// https://kaiten.ru/12345678; bare ids have at least six digits.
var cardRefRe = regexp.MustCompile(`card/(\d+)|kaiten\.ru/(\d{6,})\b|^(\d{6,})$`)

// ParseCardReference extracts a card id from a pasted link or a bare id.
func ParseCardReference(text string) (int, bool) {
	m := cardRefRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		id, err := strconv.Atoi(g)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
