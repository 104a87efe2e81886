package git

import gitbackend "github.com/thiagokokada/kaiten-timelog/internal/git/backend"

type (
	Backend     = gitbackend.Backend
	BackendKind = gitbackend.Kind
	Branch      = gitbackend.Branch
	Commit      = gitbackend.Commit
	LogStream   = gitbackend.LogStream
	Signature   = gitbackend.Signature
)

// BranchWorkItem is one branch with today's commits by the current user.
// Commits holds trimmed messages, oldest first.
type BranchWorkItem struct {
	BranchName string   `json:"branch"`
	CardID     int      `json:"card_id"`
	Commits    []string `json:"commits"`
}

func ParseBackendKind(s string) (BackendKind, error) {
	return gitbackend.ParseKind(s)
}
