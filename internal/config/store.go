package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Store holds the current configuration snapshot. Snapshots are replaced,
// never mutated, so a *Config obtained from Current stays consistent.
type Store struct {
	mu        sync.RWMutex
	path      string
	cur       *Config
	listeners []func(*Config)
	watcher   *viper.Viper
}

// NewStore loads and validates path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &Store{path: path, cur: cfg}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// OnChange registers fn to run after every successful Reload.
func (s *Store) OnChange(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the file. An invalid file keeps the previous snapshot.
func (s *Store) Reload() (*Config, error) {
	cfg, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.cur = cfg
	listeners := append([](func(*Config))(nil), s.listeners...)
	s.mu.Unlock()

	slog.Debug("config reloaded", slog.String("path", s.path))
	for _, fn := range listeners {
		fn(cfg)
	}
	return cfg, nil
}

// Update validates cfg, writes it and makes it current.
func (s *Store) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := Save(s.path, cfg); err != nil {
		return err
	}
	_, err := s.Reload()
	return err
}

// Watch reloads the store whenever the file changes on disk. It is a no-op
// when the file does not exist.
func (s *Store) Watch() error {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("config file missing, not watching", slog.String("path", s.path))
			return nil
		}
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	v := newViper(s.path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", s.path, err)
	}
	v.OnConfigChange(func(ev fsnotify.Event) {
		if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		if _, err := s.Reload(); err != nil {
			slog.Error("config reload failed", slog.Any("error", err))
		}
	})
	v.WatchConfig()
	s.watcher = v
	return nil
}
