package ingest

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/sirupsen/logrus"

	"github.com/project-recall/recall/internal/store"
)

// buildDependencies resolves internal imports across extraction results to
// concrete file paths, assembles the project import graph, and persists one
// dependency document per file with at least one edge in either direction.
// Unresolvable imports are dropped silently; they usually point outside the
// ingested tree.
func buildDependencies(ctx context.Context, results []*Result, st store.Store, repoID, branch, timestamp string) (int, error) {
	allFiles := make(map[string]bool)
	for _, r := range results {
		if r.Metadata != nil {
			allFiles[r.FilePath] = true
		}
	}

	g := graph.New(graph.StringHash, graph.Directed())
	for file := range allFiles {
		_ = g.AddVertex(file)
	}

	for _, r := range results {
		if r.Metadata == nil {
			continue
		}
		for _, imp := range r.Metadata.Imports {
			if imp.IsExternal {
				continue
			}
			resolved := resolveImport(imp.Module, r.FilePath, allFiles)
			if resolved == "" || resolved == r.FilePath {
				continue
			}
			// Duplicate edges are fine to ignore.
			_ = g.AddEdge(r.FilePath, resolved)
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return 0, fmt.Errorf("failed to read dependency graph: %w", err)
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return 0, fmt.Errorf("failed to read dependency graph: %w", err)
	}

	count := 0
	for file := range allFiles {
		imports := sortedKeys(adjacency[file])
		importedBy := sortedKeys(predecessors[file])
		if len(imports) == 0 && len(importedBy) == 0 {
			continue
		}

		doc := dependencyDoc(file, imports, importedBy, repoID, branch, timestamp)
		if err := st.Upsert(ctx, doc); err != nil {
			return count, fmt.Errorf("failed to store dependency doc for %s: %w", file, err)
		}
		count++
	}

	logrus.Infof("Built %d dependency documents", count)
	return count, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// resolveImport maps an import module string to a file path within the
// ingested set, or "" when it cannot be resolved. Three strategies:
//
//  1. Python-style relative imports (".models", "..pkg.util"): leading
//     dots count parent hops from the importing file's directory.
//  2. Path-style relative imports ("./models", "../lib/util") as written
//     in TypeScript, joined against the importing file's directory and
//     probed with source suffixes and index files.
//  3. Absolute dotted paths ("src.utils", "com.acme.api.Handler"),
//     converted to a path and probed from the tree root.
func resolveImport(module, fromFile string, allFiles map[string]bool) string {
	if module == "" {
		return ""
	}

	fromDir := path.Dir(fromFile)
	if fromDir == "." {
		fromDir = ""
	}

	switch {
	case strings.HasPrefix(module, "./") || strings.HasPrefix(module, "../"):
		target := path.Join(fromDir, module)
		return probeCandidates(target, allFiles)

	case strings.HasPrefix(module, "."):
		dots := 0
		for dots < len(module) && module[dots] == '.' {
			dots++
		}
		relative := module[dots:]

		base := fromDir
		for i := 0; i < dots-1; i++ {
			base = path.Dir(base)
			if base == "." {
				base = ""
			}
		}

		target := path.Join(base, strings.ReplaceAll(relative, ".", "/"))
		if resolved := probeCandidates(target, allFiles); resolved != "" {
			return resolved
		}
		// A file literally named with dots ("foo.bar.py") also satisfies a
		// relative import of ".foo.bar".
		if strings.Contains(relative, ".") {
			return probeCandidates(path.Join(base, relative), allFiles)
		}
		return ""

	default:
		target := strings.ReplaceAll(module, ".", "/")
		return probeCandidates(target, allFiles)
	}
}

// sourceSuffixes and indexNames are the probe order for a resolved target
// path. The bare-path probe first catches imports written with an explicit
// extension.
var (
	sourceSuffixes = []string{".py", ".ts", ".tsx", ".js", ".java"}
	indexNames     = []string{"__init__.py", "index.ts", "index.tsx", "index.js"}
)

func probeCandidates(target string, allFiles map[string]bool) string {
	target = path.Clean(target)
	if target == "." || target == ".." || strings.HasPrefix(target, "../") {
		return ""
	}

	if allFiles[target] {
		return target
	}
	for _, suffix := range sourceSuffixes {
		if candidate := target + suffix; allFiles[candidate] {
			return candidate
		}
	}
	for _, name := range indexNames {
		if candidate := target + "/" + name; allFiles[candidate] {
			return candidate
		}
	}
	return ""
}

// linkTests pairs test files with the source files they cover, by filename
// convention (test_foo.py ↔ foo.py, foo.test.ts ↔ foo.ts) and by imports
// that mention the source file's stem. Returns source path → sorted test
// paths.
func linkTests(results []*Result) map[string][]string {
	var tests, sources []*Result
	for _, r := range results {
		if r.Metadata == nil {
			continue
		}
		if r.Metadata.IsTest {
			tests = append(tests, r)
		} else {
			sources = append(sources, r)
		}
	}
	if len(tests) == 0 || len(sources) == 0 {
		return nil
	}

	// Filename-convention matches, keyed by the target stem.
	byTarget := make(map[string][]string)
	for _, t := range tests {
		stem := fileStem(t.FilePath)
		var target string
		switch {
		case strings.HasPrefix(stem, "test_"):
			target = stem[len("test_"):]
		case strings.HasSuffix(stem, "_test"):
			target = stem[:len(stem)-len("_test")]
		case strings.HasSuffix(stem, ".test"):
			target = stem[:len(stem)-len(".test")]
		case strings.HasSuffix(stem, ".spec"):
			target = stem[:len(stem)-len(".spec")]
		}
		if target != "" {
			byTarget[target] = append(byTarget[target], t.FilePath)
		}
	}

	// Import-based matches.
	importLinks := make(map[string]map[string]bool)
	for _, t := range tests {
		for _, imp := range t.Metadata.Imports {
			for _, s := range sources {
				stem := fileStem(s.FilePath)
				if strings.Contains(imp.Module, stem) {
					if importLinks[s.FilePath] == nil {
						importLinks[s.FilePath] = make(map[string]bool)
					}
					importLinks[s.FilePath][t.FilePath] = true
				}
			}
		}
	}

	linked := make(map[string][]string)
	for _, s := range sources {
		related := make(map[string]bool)
		for _, t := range byTarget[fileStem(s.FilePath)] {
			related[t] = true
		}
		for t := range importLinks[s.FilePath] {
			related[t] = true
		}
		if len(related) > 0 {
			linked[s.FilePath] = sortedKeys(related)
		}
	}
	return linked
}

// fileStem returns the base name without its final extension:
// "a/foo.test.ts" → "foo.test".
func fileStem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
