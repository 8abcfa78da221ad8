package driving

import "github.com/custodia-labs/starsync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set validates and stores a single setting by key.
	Set(key, value string) error

	// Unset removes a setting, restoring its default.
	Unset(key string) error

	// Keys returns all supported setting keys.
	Keys() []string
}
