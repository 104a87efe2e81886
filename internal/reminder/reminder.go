// Package reminder fires a callback once a day when a condition first holds.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultInterval = 30 * time.Second

type Scheduler struct {
	// Interval between checks; DefaultInterval when zero.
	Interval time.Duration
	// Check decides whether the reminder is due at the given time.
	Check func(now time.Time) bool
	// Fire runs synchronously; checks pause until it returns.
	Fire func(ctx context.Context)
	// Now defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	lastFire time.Time
}

// Run checks immediately and then every Interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick performs one check and reports whether Fire ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.now()
	s.mu.Lock()
	if sameDay(s.lastFire, now) || !s.Check(now) {
		s.mu.Unlock()
		return false
	}
	s.lastFire = now
	s.mu.Unlock()

	slog.Info("reminder fired", slog.Time("at", now))
	s.Fire(ctx)
	return true
}

// Reset allows the reminder to fire again today.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFire = time.Time{}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
