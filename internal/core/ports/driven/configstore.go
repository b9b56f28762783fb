package driven

import "github.com/coursekit/coursekit-cli/internal/core/domain"

// ConfigStore provides access to the client configuration.
// Implementations handle persistence (e.g. TOML files).
type ConfigStore interface {
	// Config returns the loaded configuration with defaults applied.
	Config() *domain.ClientConfig

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
