package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	availabilityTTL = time.Minute
	summaryTTL      = time.Hour
	availableKey    = "available"
)

// Summarizer wraps a Provider with input cleanup and memoisation of both
// availability checks and summaries.
type Summarizer struct {
	provider Provider
	lang     Language
	cache    *cache.Cache
}

func NewSummarizer(p Provider, lang Language) *Summarizer {
	return &Summarizer{
		provider: p,
		lang:     lang,
		cache:    cache.New(summaryTTL, 10*time.Minute),
	}
}

func (s *Summarizer) Provider() Provider { return s.provider }

// Available reports provider availability, checking at most once a minute.
func (s *Summarizer) Available(ctx context.Context) bool {
	if v, ok := s.cache.Get(availableKey); ok {
		return v.(bool)
	}
	ok := s.provider.Available(ctx)
	s.cache.Set(availableKey, ok, availabilityTTL)
	slog.Debug("llm availability", slog.String("provider", s.provider.Name()), slog.Bool("available", ok))
	return ok
}

// Invalidate forgets cached availability and summaries.
func (s *Summarizer) Invalidate() {
	s.cache.Flush()
}

// Summarize drops blank messages and asks the provider for a summary.
// Identical commit lists within an hour reuse the previous answer.
func (s *Summarizer) Summarize(ctx context.Context, commits []string) (string, error) {
	filtered := make([]string, 0, len(commits))
	for _, c := range commits {
		if c = strings.TrimSpace(c); c != "" {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return "", ErrEmptyInput
	}

	key := "summary:" + string(s.lang) + "\x00" + strings.Join(filtered, "\x00")
	if v, ok := s.cache.Get(key); ok {
		return v.(string), nil
	}
	text, err := s.provider.Summarize(ctx, filtered, s.lang)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyOutput
	}
	s.cache.SetDefault(key, text)
	slog.Info("summary generated", slog.String("provider", s.provider.Name()), slog.Int("commits", len(filtered)))
	return text, nil
}
