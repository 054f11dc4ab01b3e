// Package ingest orchestrates metadata-first ingestion: it walks a
// codebase, extracts structured metadata from each supported file, and
// persists file_metadata, data_contract, entry_point, and dependency
// documents. Understanding is stored, not raw code chunks.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/project-recall/recall/internal/describe"
	"github.com/project-recall/recall/internal/extract"
	"github.com/project-recall/recall/internal/parser"
	"github.com/project-recall/recall/internal/security"
	"github.com/project-recall/recall/internal/store"
)

// defaultWorkers bounds concurrent per-file extraction.
const defaultWorkers = 8

// Result is the outcome of ingesting a single file. Metadata is nil when
// the file was skipped; Reason says why. Unchanged files carry metadata but
// their persisted documents were left alone.
type Result struct {
	FilePath       string
	Language       string
	Metadata       *extract.FileMetadata
	FileMetadataID string
	ContractIDs    []string
	EntryPointID   string
	Reason         string
	Unchanged      bool

	source string // scrubbed content, kept for description generation
}

// Summary aggregates one ingestion run.
type Summary struct {
	RunID        string
	FilesScanned int
	Ingested     int
	Unchanged    int
	Skipped      int
	Contracts    int
	EntryPoints  int
	Dependencies int
	Duration     time.Duration
}

// ProgressFunc receives (done, total) after each file completes extraction.
type ProgressFunc func(done, total int)

// Ingestor runs the extraction pipeline against a Store.
type Ingestor struct {
	parsers   *parser.Provider
	registry  *extract.Registry
	scrubber  security.Scrubber
	describer *describe.Generator
	store     store.Store

	RepoID   string
	Branch   string
	Workers  int
	Progress ProgressFunc
}

// New creates an Ingestor. describer may be built with a nil TextGenerator,
// in which case all descriptions use the deterministic fallback.
func New(provider *parser.Provider, registry *extract.Registry, scrubber security.Scrubber, describer *describe.Generator, st store.Store, repoID, branch string) *Ingestor {
	return &Ingestor{
		parsers:   provider,
		registry:  registry,
		scrubber:  scrubber,
		describer: describer,
		store:     st,
		RepoID:    repoID,
		Branch:    branch,
		Workers:   defaultWorkers,
	}
}

// IngestTree walks root, extracts every supported file in parallel, then
// describes, links tests, and persists documents. Files whose content hash
// matches the previous run keep their existing documents. Per-file failures
// are recorded as skips; only store and walk failures abort the run.
func (ing *Ingestor) IngestTree(ctx context.Context, root string, opts WalkOptions) (*Summary, []*Result, error) {
	start := time.Now()
	runID := uuid.New().String()

	files, err := Walk(root, opts)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{"run": runID, "files": len(files)}).Info("starting ingestion")

	state := loadHashState(root)
	changed := make(map[string]bool, len(files))
	for _, f := range ChangedFiles(root, files, state) {
		changed[f] = true
	}

	results, err := ing.extractAll(ctx, root, files)
	if err != nil {
		return nil, nil, err
	}

	// Unchanged files are still extracted so the dependency graph covers the
	// whole tree, but their documents and descriptions are left alone.
	for _, r := range results {
		if r.Metadata != nil && !changed[r.FilePath] {
			r.Unchanged = true
		}
	}

	ing.describeAll(ctx, results)

	timestamp := time.Now().UTC().Format(time.RFC3339)
	linked := linkTests(results)

	summary := &Summary{RunID: runID, FilesScanned: len(files)}
	for _, r := range results {
		if r.Metadata == nil {
			summary.Skipped++
			continue
		}
		if r.Unchanged {
			summary.Unchanged++
			continue
		}
		if err := ing.persist(ctx, r, timestamp, linked[r.FilePath]); err != nil {
			return nil, nil, err
		}
		summary.Ingested++
		summary.Contracts += len(r.ContractIDs)
		if r.EntryPointID != "" {
			summary.EntryPoints++
		}
	}

	deps, err := buildDependencies(ctx, results, ing.store, ing.RepoID, ing.Branch, timestamp)
	if err != nil {
		return nil, nil, err
	}
	summary.Dependencies = deps
	summary.Duration = time.Since(start)

	newState := make(map[string]string, len(results))
	for _, r := range results {
		if r.Metadata != nil && r.Metadata.FileHash != "" {
			newState[r.FilePath] = r.Metadata.FileHash
		}
	}
	if err := saveHashState(root, newState); err != nil {
		logrus.Warnf("failed to save hash state: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"run":          runID,
		"ingested":     summary.Ingested,
		"unchanged":    summary.Unchanged,
		"skipped":      summary.Skipped,
		"contracts":    summary.Contracts,
		"entry_points": summary.EntryPoints,
		"dependencies": summary.Dependencies,
		"duration":     summary.Duration.Round(time.Millisecond),
	}).Info("ingestion complete")

	return summary, results, nil
}

// extractAll runs per-file extraction with a bounded worker pool. Each file
// gets its own result slot so output order matches input order.
func (ing *Ingestor) extractAll(ctx context.Context, root string, files []string) ([]*Result, error) {
	workers := ing.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]*Result, len(files))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ing.extractFile(root, rel)

			mu.Lock()
			done++
			if ing.Progress != nil {
				ing.Progress(done, len(files))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// extractFile reads, scrubs, parses, and extracts one file. It never
// returns nil; skips carry a Reason.
func (ing *Ingestor) extractFile(root, relPath string) *Result {
	result := &Result{FilePath: relPath}
	absPath := filepath.Join(root, filepath.FromSlash(relPath))

	raw, err := os.ReadFile(absPath)
	if err != nil {
		result.Reason = fmt.Sprintf("read error: %v", err)
		logrus.WithField("file", relPath).Debug("skipped (read error)")
		return result
	}
	if strings.TrimSpace(string(raw)) == "" {
		result.Reason = "empty file"
		logrus.WithField("file", relPath).Debug("skipped (empty)")
		return result
	}

	content := ing.scrubber.Scrub(string(raw))

	language := ing.parsers.DetectLanguage(relPath)
	if language == "" {
		result.Reason = "unsupported language"
		logrus.WithField("file", relPath).Debug("skipped (unsupported)")
		return result
	}
	result.Language = language

	extractor := ing.registry.Get(language)
	if extractor == nil {
		result.Reason = fmt.Sprintf("no extractor for %s", language)
		logrus.WithField("file", relPath).Debug("skipped (no extractor)")
		return result
	}

	tree := ing.parsers.Parse([]byte(content), language)
	if tree == nil {
		result.Reason = "parse failed"
		logrus.WithField("file", relPath).Debug("skipped (parse failed)")
		return result
	}
	defer tree.Close()

	metadata := extract.ExtractAll(extractor, tree.RootNode(), []byte(content), relPath)

	if hash, err := ComputeFileHash(absPath); err == nil {
		metadata.FileHash = hash
	}

	result.Metadata = metadata
	result.source = content
	return result
}

// describeAll fills in descriptions for every extracted file. Generation
// runs sequentially against the shared capability; failures fall back
// inside the Generator.
func (ing *Ingestor) describeAll(ctx context.Context, results []*Result) {
	for _, r := range results {
		if r.Metadata == nil || r.Unchanged {
			continue
		}
		r.Metadata.Description = ing.describer.Describe(ctx, r.FilePath, r.Metadata.Language, r.source, r.Metadata.ExportList())
	}
}

// persist writes the file_metadata document, one document per data
// contract, and the entry_point document when applicable.
func (ing *Ingestor) persist(ctx context.Context, r *Result, timestamp string, relatedTests []string) error {
	md := r.Metadata

	doc := fileMetadataDoc(md, ing.RepoID, ing.Branch, timestamp, relatedTests)
	if err := ing.store.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("failed to store file metadata for %s: %w", r.FilePath, err)
	}
	r.FileMetadataID = doc.ID

	for _, contract := range md.Contracts {
		cdoc := dataContractDoc(contract, r.FilePath, ing.RepoID, ing.Branch, md.Language, timestamp)
		if err := ing.store.Upsert(ctx, cdoc); err != nil {
			return fmt.Errorf("failed to store contract %s: %w", cdoc.ID, err)
		}
		r.ContractIDs = append(r.ContractIDs, cdoc.ID)
	}

	if md.IsEntryPoint {
		edoc := entryPointDoc(md, ing.RepoID, ing.Branch, timestamp)
		if err := ing.store.Upsert(ctx, edoc); err != nil {
			return fmt.Errorf("failed to store entry point for %s: %w", r.FilePath, err)
		}
		r.EntryPointID = edoc.ID
	}

	logrus.WithFields(logrus.Fields{
		"file":      r.FilePath,
		"language":  md.Language,
		"contracts": len(r.ContractIDs),
		"entry":     md.IsEntryPoint,
	}).Debug("ingested")

	return nil
}

// IngestFile runs the full pipeline for a single file, used by the watcher
// for incremental re-ingestion. A file whose hash matches the saved state is
// left alone, so spurious filesystem events cost one hash instead of a
// description call and store writes. Dependency documents are not rebuilt
// here; they refresh on the next full run.
func (ing *Ingestor) IngestFile(ctx context.Context, root, relPath string) (*Result, error) {
	result := ing.extractFile(root, relPath)
	if result.Metadata == nil {
		return result, nil
	}

	state := loadHashState(root)
	if hash := result.Metadata.FileHash; hash != "" && state[relPath] == hash {
		result.Unchanged = true
		return result, nil
	}

	result.Metadata.Description = ing.describer.Describe(ctx, relPath, result.Metadata.Language, result.source, result.Metadata.ExportList())

	timestamp := time.Now().UTC().Format(time.RFC3339)
	if err := ing.persist(ctx, result, timestamp, nil); err != nil {
		return result, err
	}

	if result.Metadata.FileHash != "" {
		if state == nil {
			state = make(map[string]string)
		}
		state[relPath] = result.Metadata.FileHash
		if err := saveHashState(root, state); err != nil {
			logrus.Warnf("failed to save hash state: %v", err)
		}
	}
	return result, nil
}
