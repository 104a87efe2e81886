// Package config loads the time-logger settings from a YAML file with
// environment overrides. A Config is a plain value handed to the components
// that need it; Store adds reload and change notification on top.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/kaiten-timelog/internal/buildinfo"
	"github.com/thiagokokada/kaiten-timelog/internal/calendar"
	gitbackend "github.com/thiagokokada/kaiten-timelog/internal/git/backend"
)

// EnvPrefix prefixes environment overrides: kaiten.token is read from
// KAITEN_TIMELOG_KAITEN_TOKEN.
const EnvPrefix = "KAITEN_TIMELOG"

const DateLayout = "2006-01-02"

type Config struct {
	Kaiten       KaitenConfig   `mapstructure:"kaiten" yaml:"kaiten"`
	Git          GitConfig      `mapstructure:"git" yaml:"git"`
	Reminder     ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
	WorkingHours float64        `mapstructure:"working_hours" yaml:"working_hours"`
	AI           AIConfig       `mapstructure:"ai" yaml:"ai"`
	Journal      JournalConfig  `mapstructure:"journal" yaml:"journal"`
	Log          LogConfig      `mapstructure:"log" yaml:"log"`
}

type KaitenConfig struct {
	URL    string `mapstructure:"url" yaml:"url"` // e.g. https://company.kaiten.ru
	Token  string `mapstructure:"token" yaml:"token"`
	RoleID int    `mapstructure:"role_id" yaml:"role_id"`

	fromKeyring bool
}

type GitConfig struct {
	RepoPath string `mapstructure:"repo_path" yaml:"repo_path"`
	// User defaults to the repository's user.name when empty.
	User    string `mapstructure:"user" yaml:"user"`
	Backend string `mapstructure:"backend" yaml:"backend"` // native or cli
}

type ReminderConfig struct {
	Time         string   `mapstructure:"time" yaml:"time"` // HH:MM
	Holidays     []string `mapstructure:"holidays" yaml:"holidays"`
	WorkdaysOnly bool     `mapstructure:"workdays_only" yaml:"workdays_only"`
}

type AIConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	Provider   string        `mapstructure:"provider" yaml:"provider"`
	Language   string        `mapstructure:"language" yaml:"language"`
	Model      string        `mapstructure:"model" yaml:"model"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	FolderID   string        `mapstructure:"folder_id" yaml:"folder_id"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"-"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// MarshalYAML writes Timeout as a duration string ("30s") rather than
// nanoseconds.
func (a AIConfig) MarshalYAML() (any, error) {
	type plain AIConfig
	return struct {
		plain   `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}{plain(a), a.Timeout.String()}, nil
}

type JournalConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Dir returns the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + buildinfo.Name
	}
	return filepath.Join(base, buildinfo.Name)
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Defaults() Config {
	return Config{
		Git: GitConfig{
			RepoPath: ".",
			Backend:  string(gitbackend.KindNative),
		},
		Reminder: ReminderConfig{
			Time:         "18:00",
			Holidays:     []string{},
			WorkdaysOnly: true,
		},
		WorkingHours: 8,
		AI: AIConfig{
			Provider:   "ollama",
			Language:   "ru",
			Endpoint:   "http://localhost:11434",
			Timeout:    30 * time.Second,
			MaxRetries: 1,
		},
		Journal: JournalConfig{
			Path: filepath.Join(Dir(), "journal.db"),
		},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("kaiten.url", d.Kaiten.URL)
	v.SetDefault("kaiten.token", d.Kaiten.Token)
	v.SetDefault("kaiten.role_id", d.Kaiten.RoleID)
	v.SetDefault("git.repo_path", d.Git.RepoPath)
	v.SetDefault("git.user", d.Git.User)
	v.SetDefault("git.backend", d.Git.Backend)
	v.SetDefault("reminder.time", d.Reminder.Time)
	v.SetDefault("reminder.holidays", d.Reminder.Holidays)
	v.SetDefault("reminder.workdays_only", d.Reminder.WorkdaysOnly)
	v.SetDefault("working_hours", d.WorkingHours)
	v.SetDefault("ai.enabled", d.AI.Enabled)
	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.language", d.AI.Language)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.endpoint", d.AI.Endpoint)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.folder_id", d.AI.FolderID)
	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("journal.path", d.Journal.Path)
	v.SetDefault("log.file", d.Log.File)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	return v
}

// Load reads path, falling back to defaults when the file does not exist.
// Environment overrides apply either way. The result is not validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	return load(newViper(path), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	resolveToken(&cfg)
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Kaiten.URL != "" {
		u, err := url.Parse(c.Kaiten.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("kaiten.url: %q is not an http(s) URL", c.Kaiten.URL))
		}
	}
	if c.Kaiten.RoleID < 0 {
		errs = append(errs, fmt.Errorf("kaiten.role_id: must not be negative"))
	}
	if _, err := gitbackend.ParseKind(c.Git.Backend); err != nil {
		errs = append(errs, fmt.Errorf("git.backend: %w", err))
	}
	if _, _, err := calendar.ParseClock(c.Reminder.Time); err != nil {
		errs = append(errs, fmt.Errorf("reminder.time: %w", err))
	}
	for _, h := range c.Reminder.Holidays {
		if _, err := time.Parse(DateLayout, h); err != nil {
			errs = append(errs, fmt.Errorf("reminder.holidays: %q is not YYYY-MM-DD", h))
		}
	}
	if c.WorkingHours <= 0 || c.WorkingHours > 24 {
		errs = append(errs, fmt.Errorf("working_hours: %v is outside (0, 24]", c.WorkingHours))
	}
	if c.AI.Enabled {
		switch c.AI.Provider {
		case "ollama":
		case "yandex":
			if c.AI.APIKey == "" || c.AI.FolderID == "" {
				errs = append(errs, fmt.Errorf("ai: yandex provider needs api_key and folder_id"))
			}
		default:
			errs = append(errs, fmt.Errorf("ai.provider: unknown provider %q", c.AI.Provider))
		}
		if c.AI.Language != "ru" && c.AI.Language != "en" {
			errs = append(errs, fmt.Errorf("ai.language: want ru or en, got %q", c.AI.Language))
		}
	}
	if c.AI.Timeout < 0 {
		errs = append(errs, fmt.Errorf("ai.timeout: must not be negative"))
	}
	if c.AI.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("ai.max_retries: must not be negative"))
	}
	return errors.Join(errs...)
}

// ErrTrackerNotConfigured is returned by RequireTracker.
var ErrTrackerNotConfigured = errors.New("kaiten tracker not configured")

// RequireTracker checks the settings needed to post time logs.
func (c *Config) RequireTracker() error {
	var missing []string
	if c.Kaiten.URL == "" {
		missing = append(missing, "kaiten.url")
	}
	if c.Kaiten.Token == "" {
		missing = append(missing, "kaiten.token")
	}
	if c.Kaiten.RoleID == 0 {
		missing = append(missing, "kaiten.role_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrTrackerNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Holidays returns the parsed reminder.holidays, skipping invalid dates.
func (c *Config) Holidays() []time.Time {
	out := make([]time.Time, 0, len(c.Reminder.Holidays))
	for _, h := range c.Reminder.Holidays {
		if d, err := time.ParseInLocation(DateLayout, h, time.Local); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	r := *c
	if r.Kaiten.Token != "" {
		r.Kaiten.Token = "***"
	}
	if r.AI.APIKey != "" {
		r.AI.APIKey = "***"
	}
	r.Reminder.Holidays = append([]string(nil), c.Reminder.Holidays...)
	return r
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path. A token read from the keyring is not written;
// any other token is, so the file is private.
func Save(path string, cfg Config) error {
	if cfg.Kaiten.fromKeyring {
		cfg.Kaiten.Token = ""
	}
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// WriteDefault creates path with default settings. An existing file is left
// alone and reported as os.ErrExist.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}
	return Save(path, Defaults())
}
