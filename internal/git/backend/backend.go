package backend

import (
	"context"
	"fmt"
	"strings"
)

// Backend abstracts read access to repository data.
//
// The default implementation uses go-git, but a git executable backend is
// available for repositories go-git cannot read (e.g. some worktree layouts).
type Backend interface {
	RepoPath() string

	// Branches lists local branch heads ordered by name.
	Branches(ctx context.Context) ([]Branch, error)
	// StartLogStream walks history from fromHash, newest committer time first.
	StartLogStream(ctx context.Context, fromHash string) (LogStream, error)
	// UserName returns the configured user.name, or "" when unset.
	UserName() (string, error)
}

type LogStream interface {
	Next() (*Commit, error)
	Close() error
}

type Kind string

const (
	KindNative Kind = "native"
	KindCLI    Kind = "cli"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindNative:
		return KindNative, nil
	case KindCLI:
		return KindCLI, nil
	default:
		return "", fmt.Errorf("unknown git backend %q (want %q or %q)", s, KindNative, KindCLI)
	}
}

// Open opens the repository containing repoPath with the requested backend.
func Open(repoPath string, kind Kind) (Backend, error) {
	switch kind {
	case KindCLI:
		return OpenCLI(repoPath)
	case KindNative, "":
		return OpenNative(repoPath)
	default:
		return nil, fmt.Errorf("unknown git backend %q", kind)
	}
}
