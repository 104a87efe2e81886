package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
kaiten:
  url: https://acme.kaiten.ru
  token: secret
  role_id: 6161
git:
  repo_path: /src/project
  backend: cli
reminder:
  time: "17:30"
  holidays: ["2026-05-01", "2026-05-11"]
working_hours: 7.5
ai:
  enabled: true
  provider: yandex
  api_key: key
  folder_id: b1g
  timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://acme.kaiten.ru", cfg.Kaiten.URL)
	assert.Equal(t, 6161, cfg.Kaiten.RoleID)
	assert.Equal(t, "cli", cfg.Git.Backend)
	assert.Equal(t, "17:30", cfg.Reminder.Time)
	assert.True(t, cfg.Reminder.WorkdaysOnly, "default kept")
	assert.Equal(t, []string{"2026-05-01", "2026-05-11"}, cfg.Reminder.Holidays)
	assert.InDelta(t, 7.5, cfg.WorkingHours, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "ru", cfg.AI.Language, "default kept")
	assert.Len(t, cfg.Holidays(), 2)
	require.NoError(t, cfg.RequireTracker())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, d.Reminder.Time, cfg.Reminder.Time)
	assert.Equal(t, d.Git.Backend, cfg.Git.Backend)
	assert.Equal(t, d.AI.Timeout, cfg.AI.Timeout)
	require.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.RequireTracker(), ErrTrackerNotConfigured)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("KAITEN_TIMELOG_KAITEN_TOKEN", "from-env")
	t.Setenv("KAITEN_TIMELOG_GIT_USER", "Ivan Petrov")
	t.Setenv("KAITEN_TIMELOG_WORKING_HOURS", "6")

	path := writeConfig(t, "kaiten:\n  token: from-file\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Kaiten.Token)
	assert.Equal(t, "Ivan Petrov", cfg.Git.User)
	assert.InDelta(t, 6.0, cfg.WorkingHours, 1e-9)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "kaiten: [unclosed\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Kaiten.URL = "acme.kaiten.ru"
	cfg.Git.Backend = "libgit2"
	cfg.Reminder.Time = "25:00"
	cfg.Reminder.Holidays = []string{"01.05.2026"}
	cfg.WorkingHours = 0
	cfg.AI.Enabled = true
	cfg.AI.Provider = "openai"
	cfg.AI.Language = "de"
	cfg.AI.MaxRetries = -1

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{
		"kaiten.url", "git.backend", "reminder.time", "reminder.holidays",
		"working_hours", "ai.provider", "ai.language", "ai.max_retries",
	} {
		assert.Contains(t, err.Error(), field)
	}

	cfg = Defaults()
	cfg.AI.Enabled = true
	cfg.AI.Provider = "yandex"
	assert.ErrorContains(t, cfg.Validate(), "api_key and folder_id")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Defaults()
	want.Kaiten = KaitenConfig{URL: "https://acme.kaiten.ru", Token: "t", RoleID: 3}
	want.Reminder.Holidays = []string{"2026-05-01"}
	want.AI.Timeout = 45 * time.Second
	require.NoError(t, Save(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 45s")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestWriteDefaultKeepsExistingFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "working_hours: 4\n")
	err := WriteDefault(path)
	assert.ErrorIs(t, err, os.ErrExist)

	fresh := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(fresh))
	cfg, err := Load(fresh)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestRedacted(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Kaiten.Token = "secret"
	cfg.AI.APIKey = "key"
	r := cfg.Redacted()
	assert.Equal(t, "***", r.Kaiten.Token)
	assert.Equal(t, "***", r.AI.APIKey)
	assert.Equal(t, "secret", cfg.Kaiten.Token)
}

func TestStoreReloadNotifies(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "working_hours: 8\n")
	store, err := NewStore(path)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, store.Current().WorkingHours, 1e-9)

	var calls atomic.Int32
	store.OnChange(func(cfg *Config) {
		calls.Add(1)
		assert.InDelta(t, 6.0, cfg.WorkingHours, 1e-9)
	})

	require.NoError(t, os.WriteFile(path, []byte("working_hours: 6\n"), 0o600))
	_, err = store.Reload()
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.InDelta(t, 6.0, store.Current().WorkingHours, 1e-9)

	require.NoError(t, os.WriteFile(path, []byte("working_hours: 99\n"), 0o600))
	_, err = store.Reload()
	assert.Error(t, err)
	assert.InDelta(t, 6.0, store.Current().WorkingHours, 1e-9, "invalid file keeps previous snapshot")
	assert.Equal(t, int32(1), calls.Load())
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := NewStore(path)
	require.NoError(t, err)

	cfg := *store.Current()
	cfg.Kaiten.RoleID = 42
	require.NoError(t, store.Update(cfg))
	assert.Equal(t, 42, store.Current().Kaiten.RoleID)

	cfg.WorkingHours = -1
	assert.Error(t, store.Update(cfg))
	assert.Equal(t, 42, store.Current().Kaiten.RoleID)
}

func TestLoadTokenFromKeyring(t *testing.T) {
	const url = "https://keyring.kaiten.ru"
	path := writeConfig(t, "kaiten:\n  url: "+url+"\n  role_id: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Kaiten.Token)
	assert.ErrorIs(t, cfg.RequireTracker(), ErrTrackerNotConfigured)

	require.NoError(t, StoreToken(url, "from-keyring"))
	t.Cleanup(func() { _ = DeleteToken(url) })

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", cfg.Kaiten.Token)
	assert.True(t, cfg.Kaiten.TokenFromKeyring())
	require.NoError(t, cfg.RequireTracker())

	require.NoError(t, Save(path, *cfg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "from-keyring")

	fileToken := writeConfig(t, "kaiten:\n  url: "+url+"\n  token: from-file\n")
	cfg, err = Load(fileToken)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Kaiten.Token, "file wins over keyring")
	assert.False(t, cfg.Kaiten.TokenFromKeyring())

	require.NoError(t, DeleteToken(url))
	require.NoError(t, DeleteToken(url), "deleting twice is fine")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Kaiten.Token)
}

func TestStoreTokenNeedsURL(t *testing.T) {
	assert.Error(t, StoreToken("", "x"))
	assert.Error(t, StoreToken("https://acme.kaiten.ru", ""))
}
