package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (RECALL_*)
// 2. Config file (.recall/config.yml or .recall/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.rootDir + "/.recall")

	// Environment variable overrides, e.g. RECALL_DESCRIPTION_PROVIDER.
	v.SetEnvPrefix("RECALL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("repository.id")
	v.BindEnv("repository.branch")
	v.BindEnv("description.provider")
	v.BindEnv("description.model")
	v.BindEnv("description.base_url")
	v.BindEnv("description.timeout_s")
	v.BindEnv("store.path")
	v.BindEnv("store.collection")
	v.BindEnv("ingest.workers")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("repository.id", defaults.Repository.ID)
	v.SetDefault("repository.branch", defaults.Repository.Branch)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("description.provider", defaults.Description.Provider)
	v.SetDefault("description.model", defaults.Description.Model)
	v.SetDefault("description.base_url", defaults.Description.BaseURL)
	v.SetDefault("description.timeout_s", defaults.Description.TimeoutS)

	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("store.collection", defaults.Store.Collection)

	v.SetDefault("ingest.workers", defaults.Ingest.Workers)
}

// LoadConfig is a convenience function that loads config from the current
// working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
