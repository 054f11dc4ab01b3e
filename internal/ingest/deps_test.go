package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-recall/recall/internal/extract"
)

// Test Plan for import resolution and test linking:
// - Resolve Python relative imports by leading-dot count
// - Resolve Python absolute dotted imports from the tree root
// - Resolve TypeScript path-style imports with suffix and index probing
// - Unresolvable imports resolve to ""
// - Impact tier buckets by dependent count
// - linkTests pairs tests by filename convention and by imports

func TestResolveImport_PythonRelative(t *testing.T) {
	t.Parallel()

	all := map[string]bool{
		"a/b.py":            true,
		"a/c.py":            true,
		"common/util.py":    true,
		"a/pkg/__init__.py": true,
	}

	// single dot: same directory
	assert.Equal(t, "a/c.py", resolveImport(".c", "a/b.py", all))

	// two dots: parent directory
	assert.Equal(t, "common/util.py", resolveImport("..common.util", "a/b.py", all))

	// package import lands on __init__.py
	assert.Equal(t, "a/pkg/__init__.py", resolveImport(".pkg", "a/b.py", all))
}

func TestResolveImport_DottedFilename(t *testing.T) {
	t.Parallel()

	// A file literally named "foo.bar.py" satisfies ".foo.bar" when no
	// foo/bar.py exists.
	all := map[string]bool{
		"pkg/foo.bar.py": true,
		"pkg/mod.py":     true,
	}

	assert.Equal(t, "pkg/foo.bar.py", resolveImport(".foo.bar", "pkg/mod.py", all))

	// The path-shaped candidate wins when both exist.
	all["pkg/foo/bar.py"] = true
	assert.Equal(t, "pkg/foo/bar.py", resolveImport(".foo.bar", "pkg/mod.py", all))
}

func TestResolveImport_PythonAbsolute(t *testing.T) {
	t.Parallel()

	all := map[string]bool{
		"src/utils.py":       true,
		"src/db/__init__.py": true,
	}

	assert.Equal(t, "src/utils.py", resolveImport("src.utils", "src/app.py", all))
	assert.Equal(t, "src/db/__init__.py", resolveImport("src.db", "src/app.py", all))
}

func TestResolveImport_TypeScriptPaths(t *testing.T) {
	t.Parallel()

	all := map[string]bool{
		"src/models.ts":          true,
		"src/lib/index.ts":       true,
		"src/components/App.tsx": true,
	}

	assert.Equal(t, "src/models.ts", resolveImport("./models", "src/api.ts", all))
	assert.Equal(t, "src/lib/index.ts", resolveImport("./lib", "src/api.ts", all))
	assert.Equal(t, "src/components/App.tsx", resolveImport("../components/App", "src/pages/home.ts", all))
}

func TestResolveImport_Unresolvable(t *testing.T) {
	t.Parallel()

	all := map[string]bool{"a/b.py": true}

	assert.Empty(t, resolveImport("unknown_pkg", "a/b.py", all))
	assert.Empty(t, resolveImport("", "a/b.py", all))
	assert.Empty(t, resolveImport("../../../etc/passwd", "a/b.py", all))
}

func TestImpactTier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Low", impactTier(0))
	assert.Equal(t, "Low", impactTier(1))
	assert.Equal(t, "Medium", impactTier(2))
	assert.Equal(t, "Medium", impactTier(5))
	assert.Equal(t, "High", impactTier(6))
}

func TestLinkTests(t *testing.T) {
	t.Parallel()

	results := []*Result{
		{
			FilePath: "src/users.py",
			Metadata: &extract.FileMetadata{FilePath: "src/users.py"},
		},
		{
			FilePath: "tests/test_users.py",
			Metadata: &extract.FileMetadata{
				FilePath: "tests/test_users.py",
				IsTest:   true,
				Imports:  []extract.ImportInfo{{Module: "src.users"}},
			},
		},
		{
			FilePath: "src/orders.ts",
			Metadata: &extract.FileMetadata{FilePath: "src/orders.ts"},
		},
		{
			FilePath: "src/orders.test.ts",
			Metadata: &extract.FileMetadata{FilePath: "src/orders.test.ts", IsTest: true},
		},
	}

	linked := linkTests(results)
	require.Len(t, linked, 2)
	assert.Equal(t, []string{"tests/test_users.py"}, linked["src/users.py"])
	assert.Equal(t, []string{"src/orders.test.ts"}, linked["src/orders.ts"])
}
