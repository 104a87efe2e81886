package git

import (
	"context"
	"errors"
	"io"
)

type fakeBackend struct {
	repoPath string

	branchesFunc func() ([]Branch, error)
	userName     string
	userNameErr  error
	// logs maps a tip hash to its history, newest first.
	logs    map[string][]*Commit
	nextErr error

	opened []string
	closed int
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) Branches(context.Context) ([]Branch, error) {
	if f.branchesFunc != nil {
		return f.branchesFunc()
	}
	return nil, errors.New("unexpected Branches call")
}

func (f *fakeBackend) StartLogStream(_ context.Context, fromHash string) (LogStream, error) {
	commits, ok := f.logs[fromHash]
	if !ok {
		return nil, errors.New("unexpected StartLogStream call for " + fromHash)
	}
	f.opened = append(f.opened, fromHash)
	return &fakeLogStream{owner: f, commits: commits, err: f.nextErr}, nil
}

func (f *fakeBackend) UserName() (string, error) {
	return f.userName, f.userNameErr
}

type fakeLogStream struct {
	owner   *fakeBackend
	commits []*Commit
	err     error
}

func (s *fakeLogStream) Next() (*Commit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.commits) == 0 {
		return nil, io.EOF
	}
	c := s.commits[0]
	s.commits = s.commits[1:]
	return c, nil
}

func (s *fakeLogStream) Close() error {
	s.owner.closed++
	return nil
}
