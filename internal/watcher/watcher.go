// Package watcher re-ingests files as they change on disk, debouncing
// bursts of filesystem events into single ingestion batches.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/project-recall/recall/internal/ingest"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches a codebase root and feeds changed files back through the
// ingestion pipeline.
type Watcher struct {
	ingestor *ingest.Ingestor
	rootDir  string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher over rootDir. All non-ignored directories in the
// tree are registered recursively.
func New(ingestor *ingest.Ingestor, rootDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		ingestor: ingestor,
		rootDir:  rootDir,
		watcher:  fsw,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the event loop. Events reset a debounce timer; when it fires,
// the accumulated batch of changed files is re-ingested.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	ingestCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			relPath, _ := filepath.Rel(w.rootDir, event.Name)
			changed[filepath.ToSlash(relPath)] = true

			// New directories need to be registered or their contents
			// will never produce events.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						logrus.Warnf("failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case ingestCh <- struct{}{}:
				default:
				}
			})

		case <-ingestCh:
			w.ingestBatch(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.Warnf("file watcher error: %v", err)
		}
	}
}

// ingestBatch re-ingests each changed file that still exists.
func (w *Watcher) ingestBatch(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}

	logrus.Infof("Re-ingesting %d changed file(s)", len(changed))
	start := time.Now()
	ingested := 0

	for relPath := range changed {
		absPath := filepath.Join(w.rootDir, filepath.FromSlash(relPath))
		if _, err := os.Stat(absPath); err != nil {
			// Deleted since the event fired.
			continue
		}
		result, err := w.ingestor.IngestFile(ctx, w.rootDir, relPath)
		if err != nil {
			logrus.Warnf("failed to re-ingest %s: %v", relPath, err)
			continue
		}
		if result.Metadata != nil && !result.Unchanged {
			ingested++
		}
	}

	logrus.Infof("Re-ingest complete in %v (%d file(s))", time.Since(start).Round(time.Millisecond), ingested)
}

// shouldProcessEvent keeps write/create/remove events on supported,
// non-ignored files.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return false
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	if ignoredPath(relPath) {
		return false
	}

	// Directories pass through so creates can register them; files must
	// have a supported extension. A removed file can't be stat'd, so an
	// extension check is the only signal available.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return event.Op&fsnotify.Create != 0
	}
	return supportedExtension(relPath)
}

func supportedExtension(relPath string) bool {
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".py", ".pyw", ".ts", ".mts", ".cts", ".tsx", ".js", ".mjs", ".cjs", ".jsx", ".java":
		return true
	}
	return false
}

// ignoredPath reports whether any path segment is hidden or a well-known
// dependency/build directory.
func ignoredPath(relPath string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, ".") && segment != "." {
			return true
		}
		switch segment {
		case "node_modules", "venv", "env", "__pycache__", "dist", "build", "out", "target", "vendor", "coverage":
			return true
		}
	}
	return false
}

// addDirectoriesRecursively registers path and every non-ignored directory
// under it.
func (w *Watcher) addDirectoriesRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logrus.Debugf("error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(w.rootDir, path)
		if err != nil {
			return nil
		}
		if relPath != "." && ignoredPath(filepath.ToSlash(relPath)) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			logrus.Warnf("failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
