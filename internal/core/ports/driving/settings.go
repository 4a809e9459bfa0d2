package driving

import "github.com/custodia-labs/regula/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, filling unset keys with defaults.
	Get() (*domain.Settings, error)

	// Set stores a single configuration key.
	Set(key string, value any) error

	// Keys lists the keys Set accepts.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}
