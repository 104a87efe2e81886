package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCardID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		branch string
		want   int
		ok     bool
	}{
		{"ABCD-11231131", 11231131, true},
		{"ABCD-46466464_dsfkjdf", 46466464, true},
		{"feature-123456789", 123456789, true},
		{"bugfix-987654321-test", 987654321, true},
		{"SUPER-123456789_fix", 123456789, true},
		{"NIOKR-987654321", 987654321, true},
		{"abasdbsad-4564654564-jdsfjlj-454", 4564654564, true},
		{"team-123-sub-456", 123, true},
		{"2024-ABCD-123", 123, true},
		{"ABCD-2024-123", 2024, true},
		{"main", 0, false},
		{"develop", 0, false},
		{"branch_without_hyphen", 0, false},
		{"branch-with-no-numbers", 0, false},
		{"feature-without-id", 0, false},
		{"-123", 0, false},
		{"ABCD-99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.branch, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractCardID(tt.branch)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
