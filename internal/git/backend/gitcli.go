package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandError is a failed git invocation with its captured stderr.
type CommandError struct {
	Op     string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := "git " + e.Op + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// exitCode returns the process exit status, or -1 when git did not run.
func (e *CommandError) exitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// gitCLI shells out to the git executable for repositories go-git cannot
// read.
type gitCLI struct {
	root string
}

func OpenCLI(repoPath string) (Backend, error) {
	if err := checkGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	out, err := (&gitCLI{root: abs}).run(context.Background(), "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return nil, errors.New("open repository: empty top-level directory")
	}
	return &gitCLI{root: root}, nil
}

func (g *gitCLI) RepoPath() string {
	return g.root
}

// run executes "git -C root args..." and returns stdout.
func (g *gitCLI) run(ctx context.Context, args ...string) (string, error) {
	if g.root == "" {
		return "", errors.New("repository root not set")
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"--no-pager", "-C", g.root}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), &CommandError{
			Op:     args[0],
			Args:   args[1:],
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

// lookup is run for queries that exit 1 with no output when nothing
// matches, such as "git config --get".
func (g *gitCLI) lookup(ctx context.Context, args ...string) (string, bool, error) {
	out, err := g.run(ctx, args...)
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.exitCode() == 1 && cmdErr.Stderr == "" {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}
