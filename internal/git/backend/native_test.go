package backend_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/kaiten-timelog/internal/git/backend"
	"github.com/thiagokokada/kaiten-timelog/internal/git/gittest"
)

func TestNativeBranches(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := gittest.NewRepo(t)
	repo.Commit("main", "alice", base, "init")
	repo.Branch("ABCD-7", "main")
	tip := repo.Commit("ABCD-7", "alice", base.Add(2*time.Hour), "work")

	b := backend.NewNative(repo.Repository, "/tmp/repo")
	assert.Equal(t, "/tmp/repo", b.RepoPath())

	branches, err := b.Branches(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "ABCD-7", branches[0].Name)
	assert.Equal(t, tip, branches[0].Hash)
	assert.True(t, branches[0].TipTime.Equal(base.Add(2*time.Hour)))
	assert.Equal(t, "main", branches[1].Name)
}

func TestNativeLogStreamNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := gittest.NewRepo(t)
	first := repo.Commit("main", "alice", base, "first")
	second := repo.Commit("main", "bob", base.Add(time.Hour), "second\n\nbody")

	b := backend.NewNative(repo.Repository, "")
	stream, err := b.StartLogStream(context.Background(), second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stream.Close() })

	c, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, second, c.Hash)
	assert.Equal(t, "bob", c.Author.Name)
	assert.Equal(t, "second\n\nbody", c.Message)
	assert.Equal(t, []string{first}, c.ParentHashes)

	c, err = stream.Next()
	require.NoError(t, err)
	assert.Equal(t, first, c.Hash)
	assert.Empty(t, c.ParentHashes)

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNativeLogStreamHonorsContext(t *testing.T) {
	t.Parallel()

	repo := gittest.NewRepo(t)
	tip := repo.Commit("main", "alice", time.Now(), "only")

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := backend.NewNative(repo.Repository, "").StartLogStream(ctx, tip)
	require.NoError(t, err)
	defer stream.Close()

	cancel()
	_, err = stream.Next()
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNativeStartLogStreamRequiresHash(t *testing.T) {
	t.Parallel()

	repo := gittest.NewRepo(t)
	_, err := backend.NewNative(repo.Repository, "").StartLogStream(context.Background(), "  ")
	assert.Error(t, err)
}

func TestNativeUserNameFromRepositoryConfig(t *testing.T) {
	t.Parallel()

	repo := gittest.NewRepo(t)
	repo.SetUserName("Ivan Petrov")

	name, err := backend.NewNative(repo.Repository, "").UserName()
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", name)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]backend.Kind{
		"":       backend.KindNative,
		"native": backend.KindNative,
		" CLI ":  backend.KindCLI,
		"cli":    backend.KindCLI,
	} {
		got, err := backend.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := backend.ParseKind("libgit2")
	assert.Error(t, err)
}
