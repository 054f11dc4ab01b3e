package ingest

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

// maxFileSize skips files larger than 1MB.
const maxFileSize = 1_000_000

// defaultIgnoreDirs are directory names never descended into.
var defaultIgnoreDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	"__pycache__":   true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".ruff_cache":   true,
	"dist":          true,
	"build":         true,
	"out":           true,
	".next":         true,
	".nuxt":         true,
	"target":        true,
	".idea":         true,
	".vscode":       true,
	".cache":        true,
	"coverage":      true,
	"vendor":        true,
}

// binaryExtensions are file extensions skipped without reading content.
var binaryExtensions = map[string]bool{
	".exe": true, ".bin": true, ".so": true, ".dylib": true, ".dll": true,
	".o": true, ".a": true, ".lib": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true, ".webp": true,
	".mp3": true, ".mp4": true, ".wav": true, ".avi": true, ".mov": true, ".webm": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".7z": true, ".rar": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".pyc": true, ".pyo": true, ".class": true, ".jar": true, ".war": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
}

// ignoreFileName is the per-project ignore file, one glob pattern per line.
const ignoreFileName = ".recallignore"

// WalkOptions controls codebase traversal.
type WalkOptions struct {
	// Extensions restricts results to the given extensions (lowercase,
	// with dot) when non-empty.
	Extensions map[string]bool
	// IgnorePatterns are glob patterns matched against both the base name
	// and the root-relative path. Merged with .recallignore if present.
	IgnorePatterns []string
	// IncludePatterns, when non-empty, keeps only root-relative paths
	// matching at least one pattern.
	IncludePatterns []string
}

// Walk traverses root and returns the root-relative paths of candidate
// source files: non-hidden, non-binary, under the size cap, and passing
// the ignore/include patterns.
func Walk(root string, opts WalkOptions) ([]string, error) {
	ignoreGlobs, err := compilePatterns(append(loadIgnoreFile(root), opts.IgnorePatterns...))
	if err != nil {
		return nil, err
	}
	includeGlobs, err := compilePatterns(opts.IncludePatterns)
	if err != nil {
		return nil, err
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Debugf("walk error at %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if defaultIgnoreDirs[name] || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".egg-info") {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if binaryExtensions[ext] {
			return nil
		}
		if len(opts.Extensions) > 0 && !opts.Extensions[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxFileSize {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(ignoreGlobs, name) || matchesAny(ignoreGlobs, rel) {
			return nil
		}
		if len(includeGlobs) > 0 && !matchesAny(includeGlobs, rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, walkErr)
	}

	return files, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchesAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// loadIgnoreFile reads .recallignore from root. Missing file is not an
// error; comments and blank lines are skipped.
func loadIgnoreFile(root string) []string {
	f, err := os.Open(filepath.Join(root, ignoreFileName))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// ComputeFileHash returns the MD5 hex digest of the file at path, used for
// delta sync rather than security.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ChangedFiles filters paths down to those whose current hash differs from
// the recorded hash in state (path → hash). Unreadable files are skipped.
func ChangedFiles(root string, paths []string, state map[string]string) []string {
	var changed []string
	for _, rel := range paths {
		hash, err := ComputeFileHash(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		if state[rel] != hash {
			changed = append(changed, rel)
		}
	}
	return changed
}
