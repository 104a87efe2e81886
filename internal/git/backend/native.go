package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type native struct {
	*gitlib.Repository
	path string
}

func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &native{Repository: repo, path: abs}, nil
}

// NewNative wraps an already opened repository, e.g. one backed by memory
// storage.
func NewNative(repo *gitlib.Repository, path string) Backend {
	return &native{Repository: repo, path: path}
}

func (n *native) RepoPath() string {
	return n.path
}

func (n *native) Branches(ctx context.Context) ([]Branch, error) {
	iter, err := n.Repository.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer iter.Close()

	var branches []Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		commit, err := n.CommitObject(ref.Hash())
		if err != nil {
			return fmt.Errorf("resolve %s: %w", ref.Name().Short(), err)
		}
		branches = append(branches, Branch{
			Name:    ref.Name().Short(),
			Hash:    ref.Hash().String(),
			TipTime: commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(branches, func(a, b Branch) int { return strings.Compare(a.Name, b.Name) })
	return branches, nil
}

func (n *native) StartLogStream(ctx context.Context, fromHash string) (LogStream, error) {
	fromHash = strings.TrimSpace(fromHash)
	if fromHash == "" {
		return nil, fmt.Errorf("starting commit not specified")
	}
	iter, err := n.Log(&gitlib.LogOptions{From: plumbing.NewHash(fromHash), Order: gitlib.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}
	return &nativeLogStream{ctx: ctx, iter: iter}, nil
}

func (n *native) UserName() (string, error) {
	cfg, err := n.ConfigScoped(config.GlobalScope)
	if err != nil {
		// Global config may be unreadable (no HOME); fall back to the repository's own.
		cfg, err = n.Config()
		if err != nil {
			return "", fmt.Errorf("read git config: %w", err)
		}
	}
	return strings.TrimSpace(cfg.User.Name), nil
}

type nativeLogStream struct {
	ctx  context.Context
	iter object.CommitIter
}

func (s *nativeLogStream) Next() (*Commit, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.iter.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("iterate commits: %w", err)
	}
	return fromObject(c), nil
}

func (s *nativeLogStream) Close() error {
	s.iter.Close()
	return nil
}

func fromObject(c *object.Commit) *Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, h := range c.ParentHashes {
		parents = append(parents, h.String())
	}
	return &Commit{
		Hash:         c.Hash.String(),
		ParentHashes: parents,
		Author:       Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Author.When},
		Committer:    Signature{Name: c.Committer.Name, Email: c.Committer.Email, When: c.Committer.When},
		Message:      c.Message,
	}
}
