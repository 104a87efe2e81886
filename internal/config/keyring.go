package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"

	"github.com/thiagokokada/kaiten-timelog/internal/buildinfo"
)

// Tokens live in the OS keyring under the tool's name, one per Kaiten URL.
var keyringService = buildinfo.Name

// StoreToken saves token in the OS keyring for kaitenURL.
func StoreToken(kaitenURL, token string) error {
	if kaitenURL == "" {
		return errors.New("kaiten.url must be set before storing a token")
	}
	if token == "" {
		return errors.New("empty token")
	}
	if err := keyring.Set(keyringService, kaitenURL, token); err != nil {
		return fmt.Errorf("storing token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the keyring token for kaitenURL. A missing entry is
// not an error.
func DeleteToken(kaitenURL string) error {
	err := keyring.Delete(keyringService, kaitenURL)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keyring: %w", err)
	}
	return nil
}

// resolveToken fills an empty kaiten.token from the keyring. A missing or
// locked keyring leaves it empty for RequireTracker to report.
func resolveToken(cfg *Config) {
	if cfg.Kaiten.Token != "" || cfg.Kaiten.URL == "" {
		return
	}
	token, err := keyring.Get(keyringService, cfg.Kaiten.URL)
	switch {
	case err == nil:
		cfg.Kaiten.Token = token
		cfg.Kaiten.fromKeyring = true
	case errors.Is(err, keyring.ErrNotFound):
	default:
		slog.Debug("keyring unavailable", slog.Any("error", err))
	}
}

// TokenFromKeyring reports whether kaiten.token was read from the keyring.
func (k KaitenConfig) TokenFromKeyring() bool { return k.fromKeyring }
