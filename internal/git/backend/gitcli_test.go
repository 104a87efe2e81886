package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBranchesFromForEachRef(t *testing.T) {
	t.Parallel()

	out := "" +
		"1111111111111111111111111111111111111111 1772442000 refs/heads/ABCD-123\n" +
		"2222222222222222222222222222222222222222 1772445600 refs/heads/feature/NIOKR-9\r\n" +
		"\n" +
		"3333333333333333333333333333333333333333 1772449200 refs/remotes/origin/main\n"

	got, err := parseBranchesFromForEachRef(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Branch{
		Name:    "ABCD-123",
		Hash:    "1111111111111111111111111111111111111111",
		TipTime: time.Unix(1772442000, 0),
	}, got[0])
	assert.Equal(t, "feature/NIOKR-9", got[1].Name)
	assert.Equal(t, time.Unix(1772445600, 0), got[1].TipTime)
}

func TestParseBranchesFromForEachRefRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := parseBranchesFromForEachRef("deadbeef refs/heads/main\n")
	assert.Error(t, err)

	_, err = parseBranchesFromForEachRef("deadbeef yesterday refs/heads/main\n")
	assert.Error(t, err)
}

func TestParseGitLogRecord(t *testing.T) {
	t.Parallel()

	rec := []byte("abc123\n" +
		"p1 p2\n" +
		"Alice\n" +
		"alice@example.com\n" +
		"2026-03-02T09:15:00+03:00\n" +
		"Bob\n" +
		"bob@example.com\n" +
		"2026-03-02T10:00:00+03:00\n" +
		"Subject line\n" +
		"\n" +
		"Body line\n")

	got, err := parseGitLogRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.Hash)
	assert.Equal(t, []string{"p1", "p2"}, got.ParentHashes)
	assert.Equal(t, "Alice", got.Author.Name)
	assert.Equal(t, "alice@example.com", got.Author.Email)
	assert.Equal(t, "Bob", got.Committer.Name)
	assert.Equal(t, "Subject line\n\nBody line\n", got.Message)

	msk := time.FixedZone("MSK", 3*60*60)
	assert.True(t, got.Author.When.Equal(time.Date(2026, 3, 2, 9, 15, 0, 0, msk)))
	assert.True(t, got.Committer.When.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, msk)))
}

func TestParseGitLogRecordErrors(t *testing.T) {
	t.Parallel()

	for name, rec := range map[string]string{
		"short":           "abc\n\nAlice",
		"missing_hash":    "\n\nA\na@x\n2026-03-02T09:15:00Z\nB\nb@x\n2026-03-02T09:15:00Z\nmsg",
		"bad_author_date": "abc\n\nA\na@x\nyesterday\nB\nb@x\n2026-03-02T09:15:00Z\nmsg",
	} {
		rec := rec
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := parseGitLogRecord([]byte(rec))
			assert.Error(t, err)
		})
	}
}

func TestCommandError(t *testing.T) {
	t.Parallel()

	base := errors.New("exit status 128")
	err := &CommandError{Op: "log", Args: []string{"deadbeef"}, Stderr: "fatal: bad object deadbeef", Err: base}
	assert.Equal(t, "git log: exit status 128: fatal: bad object deadbeef", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, -1, err.exitCode())

	assert.Equal(t, "git config: exit status 1", (&CommandError{Op: "config", Err: errors.New("exit status 1")}).Error())
}
