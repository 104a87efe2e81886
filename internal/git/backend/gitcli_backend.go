package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// %(refname) is used instead of %(refname:short) because the short form
// becomes "heads/x" when a tag with the same name exists.
const forEachRefFormat = "%(objectname) %(committerdate:unix) %(refname)"

func (g *gitCLI) Branches(ctx context.Context) ([]Branch, error) {
	out, err := g.run(ctx, "for-each-ref", "--sort=refname", "--format="+forEachRefFormat, "refs/heads/")
	if err != nil {
		return nil, err
	}
	return parseBranchesFromForEachRef(out)
}

func (g *gitCLI) UserName() (string, error) {
	out, found, err := g.lookup(context.Background(), "config", "--get", "user.name")
	if err != nil || !found {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func parseBranchesFromForEachRef(out string) ([]Branch, error) {
	var branches []Branch
	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unexpected for-each-ref output line: %q", rawLine)
		}
		hash, stamp, refName := parts[0], parts[1], parts[2]
		if !strings.HasPrefix(refName, "refs/heads/") {
			continue
		}
		short := strings.TrimPrefix(refName, "refs/heads/")
		if short == "" {
			continue
		}
		secs, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected commit time %q for %s: %w", stamp, short, err)
		}
		branches = append(branches, Branch{Name: short, Hash: hash, TipTime: time.Unix(secs, 0)})
	}
	return branches, nil
}
