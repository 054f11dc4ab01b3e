package config

import "fmt"

// Validate checks a configuration for obviously invalid values.
func Validate(cfg *Config) error {
	switch cfg.Description.Provider {
	case "", "none", "openai":
	default:
		return fmt.Errorf("unknown description provider: %q (expected \"openai\" or \"none\")", cfg.Description.Provider)
	}

	if cfg.Description.TimeoutS < 0 {
		return fmt.Errorf("description.timeout_s must be non-negative, got %d", cfg.Description.TimeoutS)
	}
	if cfg.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must be non-negative, got %d", cfg.Ingest.Workers)
	}
	if cfg.Store.Collection == "" {
		return fmt.Errorf("store.collection must not be empty")
	}

	return nil
}
