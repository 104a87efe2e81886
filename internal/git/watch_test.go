package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	assert.Equal(t, []string{root}, watchPaths(root))

	heads := filepath.Join(root, ".git", "refs", "heads")
	require.NoError(t, os.MkdirAll(filepath.Join(heads, "feature"), 0o755))
	assert.Equal(t, []string{
		filepath.Join(root, ".git"),
		heads,
		filepath.Join(heads, "feature"),
	}, watchPaths(root))

	assert.Nil(t, watchPaths(""))
}

func TestShouldIgnoreWatchPath(t *testing.T) {
	t.Parallel()

	assert.True(t, shouldIgnoreWatchPath("/repo/.git/index.lock"))
	assert.True(t, shouldIgnoreWatchPath("/repo/.git/refs/heads/ABCD-1.LOCK"))
	assert.False(t, shouldIgnoreWatchPath("/repo/.git/refs/heads/ABCD-1"))
}

func TestWatchTriggersOnRefChange(t *testing.T) {
	root := t.TempDir()
	heads := filepath.Join(root, ".git", "refs", "heads")
	require.NoError(t, os.MkdirAll(heads, 0o755))

	fired := make(chan struct{}, 1)
	w, err := Watch(root, 10*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(heads, "ABCD-1"), []byte("deadbeef\n"), 0o644))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
