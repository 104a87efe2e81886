package git

import (
	"errors"
	"fmt"
)

// ErrScan matches every *ScanError.
var ErrScan = errors.New("repository scan failed")

// ScanError reports a repository that could not be opened or read. A scan
// that fails returns no partial result.
type ScanError struct {
	Path string
	Op   string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("git %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("git %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

func (e *ScanError) Is(target error) bool { return target == ErrScan }
