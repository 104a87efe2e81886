package llm

import "errors"

var (
	// ErrUnavailable indicates the provider endpoint is unreachable.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	ErrEmptyInput  = errors.New("no commit messages to summarize")
	ErrEmptyOutput = errors.New("llm returned an empty summary")

	ErrUnknownProvider = errors.New("unknown llm provider")
)
