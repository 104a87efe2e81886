package backend

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// version is a git release as major.minor.patch.
type version [3]int

func (v version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

func (v version) atLeast(min version) bool {
	for i := range v {
		if v[i] != min[i] {
			return v[i] > min[i]
		}
	}
	return true
}

// minVersion is the oldest git whose "log --pretty=%cI" and
// "for-each-ref %(committerdate:unix)" the CLI backend relies on.
var minVersion = version{2, 23, 0}

func MinGitVersion() string {
	return minVersion.String()
}

// Matches "git version 2.44.0", "git version 2.39.3 (Apple Git-146)" and
// "git version 2.39.3.windows.1"; the patch level is optional.
var versionRe = regexp.MustCompile(`^(?:git version\s+)?(\d+)\.(\d+)(?:\.(\d+))?`)

func parseVersion(out string) (version, error) {
	m := versionRe.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return version{}, fmt.Errorf("unrecognized git version output %q", strings.TrimSpace(out))
	}
	var v version
	for i, s := range m[1:] {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return version{}, fmt.Errorf("git version %q: %w", m[0], err)
		}
		v[i] = n
	}
	return v, nil
}

func requireVersion(out string, min version) error {
	v, err := parseVersion(out)
	if err != nil {
		return err
	}
	if !v.atLeast(min) {
		return fmt.Errorf("git %s is too old: the cli backend needs git %s or newer", v, min)
	}
	return nil
}

var gitVersion = sync.OnceValues(func() (string, error) {
	out, err := exec.Command("git", "--version").CombinedOutput()
	if err != nil {
		return "", &CommandError{Op: "--version", Stderr: strings.TrimSpace(string(out)), Err: err}
	}
	return strings.TrimSpace(string(out)), nil
})

// checkGitVersion runs "git --version" once per process.
func checkGitVersion() error {
	out, err := gitVersion()
	if err != nil {
		return err
	}
	return requireVersion(out, minVersion)
}
