package backend

import "time"

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

type Commit struct {
	Hash         string
	ParentHashes []string
	Author       Signature
	Committer    Signature
	Message      string
}

// Branch is a local branch head. TipTime is the committer time of the tip
// commit, which lets callers skip branches without walking them.
type Branch struct {
	Name    string // short name: main, ABCD-123
	Hash    string
	TipTime time.Time
}
