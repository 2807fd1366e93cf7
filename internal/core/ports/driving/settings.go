package driving

import "github.com/cloudstore/pagesmith/internal/core/domain"

// SettingsService reads and writes the pipeline configuration file.
type SettingsService interface {
	// List returns every known key with its effective value.
	List() []domain.Setting

	// Get returns the effective value of one key.
	// Unknown keys return ErrInvalidInput.
	Get(key string) (domain.Setting, error)

	// Set validates value against the key's type and persists it.
	// Changes apply the next time the services are built.
	Set(key, value string) error

	// Path returns the location of the configuration file.
	Path() string
}
