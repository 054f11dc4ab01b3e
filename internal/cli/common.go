package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/project-recall/recall/internal/config"
	"github.com/project-recall/recall/internal/describe"
	"github.com/project-recall/recall/internal/extract"
	"github.com/project-recall/recall/internal/git"
	"github.com/project-recall/recall/internal/ingest"
	"github.com/project-recall/recall/internal/parser"
	"github.com/project-recall/recall/internal/security"
	"github.com/project-recall/recall/internal/store"
)

// buildIngestor wires the full pipeline from configuration: parser provider,
// extractor registry, scrubber, description generator, and vector store.
func buildIngestor(rootDir string, cfg *config.Config, st store.Store) *ingest.Ingestor {
	repoID := cfg.Repository.ID
	if repoID == "" {
		repoID = filepath.Base(rootDir)
	}

	// A configured branch wins; otherwise stamp documents with the branch
	// actually checked out.
	branch := cfg.Repository.Branch
	if branch == "" {
		branch = git.CurrentBranch(rootDir)
	}

	describer := describe.NewGenerator(buildTextGenerator(cfg), time.Duration(cfg.Description.TimeoutS)*time.Second)

	ing := ingest.New(
		parser.New(),
		extract.NewRegistry(),
		security.NewScrubber(),
		describer,
		st,
		repoID,
		branch,
	)
	if cfg.Ingest.Workers > 0 {
		ing.Workers = cfg.Ingest.Workers
	}
	return ing
}

// buildTextGenerator returns nil when descriptions are disabled or no API
// key is available; the Generator then uses deterministic fallbacks.
func buildTextGenerator(cfg *config.Config) describe.TextGenerator {
	if cfg.Description.Provider != "openai" {
		return nil
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY not set; using fallback descriptions")
		return nil
	}
	gen, err := describe.NewOpenAIGenerator(apiKey, cfg.Description.Model, cfg.Description.BaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "description provider unavailable (%v); using fallback descriptions\n", err)
		return nil
	}
	return gen
}

// openStore opens the persistent vector store for a codebase root.
func openStore(rootDir string, cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = filepath.Join(rootDir, ".recall", "db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return store.NewChromemStore(dbPath, cfg.Store.Collection, nil)
}
