package config

// Config represents the complete recall configuration.
// It can be loaded from .recall/config.yml with environment variable overrides.
type Config struct {
	Repository  RepositoryConfig  `yaml:"repository" mapstructure:"repository"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Description DescriptionConfig `yaml:"description" mapstructure:"description"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Ingest      IngestConfig      `yaml:"ingest" mapstructure:"ingest"`
}

// RepositoryConfig identifies the codebase being ingested.
type RepositoryConfig struct {
	ID     string `yaml:"id" mapstructure:"id"`         // repository identifier; defaults to the root directory name
	Branch string `yaml:"branch" mapstructure:"branch"` // branch label recorded on documents; empty means detect from git
}

// PathsConfig defines which files to ingest and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // if set, only matching paths are ingested
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip, merged with .recallignore
}

// DescriptionConfig configures file description generation.
type DescriptionConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`   // "openai" or "none"
	Model    string `yaml:"model" mapstructure:"model"`         // chat model for descriptions
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`   // override for OpenAI-compatible endpoints
	TimeoutS int    `yaml:"timeout_s" mapstructure:"timeout_s"` // per-call timeout in seconds
}

// StoreConfig configures the vector store.
type StoreConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`             // database directory; defaults to .recall/db under the root
	Collection string `yaml:"collection" mapstructure:"collection"` // collection name
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // concurrent extraction workers
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Repository: RepositoryConfig{
			ID:     "", // empty means derive from the root directory name
			Branch: "", // empty means detect from git
		},
		Paths: PathsConfig{
			Include: nil,
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"*.min.js",
				"*.pyc",
			},
		},
		Description: DescriptionConfig{
			Provider: "none",
			Model:    "gpt-4o-mini",
			BaseURL:  "",
			TimeoutS: 30,
		},
		Store: StoreConfig{
			Path:       "", // empty means .recall/db under the root
			Collection: "recall",
		},
		Ingest: IngestConfig{
			Workers: 8,
		},
	}
}
