package driven

import "github.com/cxpkg/cx/internal/core/domain"

// ConfigStore provides access to application configuration.
type ConfigStore interface {
	// Get retrieves a raw configuration value by canonical key. Legacy
	// aliases for a key are consulted transparently and flagged.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	GetString(key string) string

	// GetBool retrieves a boolean configuration value.
	GetBool(key string) bool

	// Set stores a configuration value under its canonical key.
	Set(key string, value any) error

	// Save persists the configuration.
	Save() error

	// Settings assembles the typed settings consumed by core services.
	Settings() domain.Settings

	// LegacyKeysUsed reports which deprecated option spellings the loaded
	// configuration relied on. Callers surface these as removal warnings.
	LegacyKeysUsed() []string
}
