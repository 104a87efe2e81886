package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("kaiten rejected the token")

	ErrInvalidTimeLog = errors.New("invalid time log")
)

// APIError is any other non-success response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("kaiten API returned status %d", e.Status)
	}
	return fmt.Sprintf("kaiten API returned status %d: %s", e.Status, e.Body)
}
