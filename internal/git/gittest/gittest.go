// Package gittest builds in-memory repositories with exact commit
// timestamps for scanner and backend tests.
package gittest

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

type Repo struct {
	*gitlib.Repository
	t         testing.TB
	emptyTree plumbing.Hash
}

func NewRepo(t testing.TB) *Repo {
	t.Helper()

	repo, err := gitlib.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return wrap(t, repo)
}

// NewDiskRepo is like NewRepo but lives in a temporary directory, for code
// that opens repositories by path. It returns the directory.
func NewDiskRepo(t testing.TB) (*Repo, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return wrap(t, repo), dir
}

func wrap(t testing.TB, repo *gitlib.Repository) *Repo {
	t.Helper()

	r := &Repo{Repository: repo, t: t}
	obj := repo.Storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(obj); err != nil {
		t.Fatalf("encode tree: %v", err)
	}
	var err error
	r.emptyTree, err = repo.Storer.SetEncodedObject(obj)
	if err != nil {
		t.Fatalf("store tree: %v", err)
	}
	return r
}

// SetUserName writes user.name into the repository config.
func (r *Repo) SetUserName(name string) {
	r.t.Helper()

	cfg, err := r.Config()
	if err != nil {
		r.t.Fatalf("read config: %v", err)
	}
	cfg.User.Name = name
	if err := r.SetConfig(cfg); err != nil {
		r.t.Fatalf("write config: %v", err)
	}
}

// Commit adds a commit on top of branch, creating the branch when it does
// not exist yet. Author and committer share name and time.
func (r *Repo) Commit(branch, author string, when time.Time, msg string) string {
	r.t.Helper()

	var parents []plumbing.Hash
	if ref, err := r.Reference(plumbing.NewBranchReferenceName(branch), true); err == nil {
		parents = append(parents, ref.Hash())
	}
	sig := object.Signature{Name: author, Email: author + "@example.com", When: when}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     r.emptyTree,
		ParentHashes: parents,
	}
	obj := r.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		r.t.Fatalf("encode commit: %v", err)
	}
	hash, err := r.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("store commit: %v", err)
	}
	r.setBranch(branch, hash)
	return hash.String()
}

// Branch points name at the current tip of from.
func (r *Repo) Branch(name, from string) {
	r.t.Helper()

	ref, err := r.Reference(plumbing.NewBranchReferenceName(from), true)
	if err != nil {
		r.t.Fatalf("resolve %s: %v", from, err)
	}
	r.setBranch(name, ref.Hash())
}

func (r *Repo) setBranch(name string, hash plumbing.Hash) {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := r.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("set %s: %v", name, err)
	}
}
