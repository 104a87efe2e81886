// Package llm turns a branch's commit messages into a short work summary
// using a language model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
)

// ParseLanguage maps anything other than "en" to Russian.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(LanguageEN)) {
		return LanguageEN
	}
	return LanguageRU
}

// Provider is one language model backend.
type Provider interface {
	Name() string
	// Available reports whether the backend can currently serve requests.
	Available(ctx context.Context) bool
	Summarize(ctx context.Context, commits []string, lang Language) (string, error)
}

type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	FolderID   string
	Timeout    time.Duration
	MaxRetries int
}

const (
	DefaultTimeout = 30 * time.Second
	temperature    = 0.3
)

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		return NewOllama(cfg), nil
	case "yandex":
		if cfg.APIKey == "" || cfg.FolderID == "" {
			return nil, fmt.Errorf("yandex provider: api key and folder id are required")
		}
		return NewYandex(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
	}
}

// generate runs call with the configured timeout, retrying failures that
// are not caused by the deadline.
func generate(ctx context.Context, cfg Config, name string, call func(context.Context) (string, error)) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var lastErr error
	attempts := 1 + cfg.MaxRetries
	for i := 0; i < attempts; i++ {
		text, err := call(ctx)
		if err == nil {
			slog.Debug("llm call complete",
				slog.String("provider", name),
				slog.Int("attempt", i+1),
				slog.Duration("latency", time.Since(start)),
			)
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	slog.Debug("llm call failed",
		slog.String("provider", name),
		slog.Duration("latency", time.Since(start)),
		slog.Any("error", lastErr),
	)
	if ctx.Err() != nil {
		return "", ErrTimeout
	}
	if isConnectionError(lastErr) {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
