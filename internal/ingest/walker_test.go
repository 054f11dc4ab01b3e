package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the codebase walker:
// - Yield source files as root-relative slash paths
// - Skip hidden files, hidden directories, and default ignore directories
// - Skip binary extensions and oversized files
// - Honor explicit ignore patterns and .recallignore
// - Honor include patterns when provided
// - ComputeFileHash is stable for identical content

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWalk_Basics(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/app.py", "x = 1\n")
	writeFile(t, root, "src/.hidden.py", "x = 1\n")
	writeFile(t, root, ".git/config.py", "x = 1\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x = 1\n")
	writeFile(t, root, "logo.png", "binary")
	writeFile(t, root, "README.md", "# readme\n")

	files, err := Walk(root, WalkOptions{})
	require.NoError(t, err)

	assert.Contains(t, files, "src/app.py")
	assert.Contains(t, files, "README.md")
	assert.NotContains(t, files, "src/.hidden.py")
	assert.NotContains(t, files, ".git/config.py")
	assert.NotContains(t, files, "node_modules/pkg/index.js")
	assert.NotContains(t, files, "logo.png")
}

func TestWalk_SkipsOversizedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "small.py", "x = 1\n")
	writeFile(t, root, "huge.py", strings.Repeat("#", maxFileSize+1))

	files, err := Walk(root, WalkOptions{})
	require.NoError(t, err)
	assert.Contains(t, files, "small.py")
	assert.NotContains(t, files, "huge.py")
}

func TestWalk_IgnoreAndIncludePatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/app.py", "x = 1\n")
	writeFile(t, root, "src/generated.py", "x = 1\n")
	writeFile(t, root, "docs/guide.py", "x = 1\n")

	files, err := Walk(root, WalkOptions{
		IgnorePatterns:  []string{"**/generated.py"},
		IncludePatterns: []string{"src/**"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.py"}, files)
}

func TestWalk_RecallignoreFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, ".recallignore", "# comment\n*.gen.py\n")
	writeFile(t, root, "app.py", "x = 1\n")
	writeFile(t, root, "schema.gen.py", "x = 1\n")

	files, err := Walk(root, WalkOptions{})
	require.NoError(t, err)
	assert.Contains(t, files, "app.py")
	assert.NotContains(t, files, "schema.gen.py")
}

func TestComputeFileHash(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.py", "same content")
	writeFile(t, root, "b.py", "same content")
	writeFile(t, root, "c.py", "different")

	hashA, err := ComputeFileHash(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	hashB, err := ComputeFileHash(filepath.Join(root, "b.py"))
	require.NoError(t, err)
	hashC, err := ComputeFileHash(filepath.Join(root, "c.py"))
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
	assert.NotEqual(t, hashA, hashC)
	assert.Len(t, hashA, 32)

	_, err = ComputeFileHash(filepath.Join(root, "missing.py"))
	assert.Error(t, err)
}

func TestChangedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.py", "one")
	writeFile(t, root, "b.py", "two")

	hashA, err := ComputeFileHash(filepath.Join(root, "a.py"))
	require.NoError(t, err)

	state := map[string]string{"a.py": hashA, "b.py": "stale"}
	changed := ChangedFiles(root, []string{"a.py", "b.py"}, state)
	assert.Equal(t, []string{"b.py"}, changed)
}
