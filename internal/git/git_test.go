package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests shell out to a real git binary and run sequentially.

func TestCurrentBranch(t *testing.T) {
	requireGit(t)

	t.Run("on main", func(t *testing.T) {
		dir := newTestRepo(t)
		assert.Equal(t, "main", CurrentBranch(dir))
	})

	t.Run("on feature branch", func(t *testing.T) {
		dir := newTestRepo(t)
		runGit(t, dir, "checkout", "-b", "feature/auth")
		assert.Equal(t, "feature/auth", CurrentBranch(dir))
	})

	t.Run("detached HEAD", func(t *testing.T) {
		dir := newTestRepo(t)
		runGit(t, dir, "checkout", "--detach")
		assert.Contains(t, CurrentBranch(dir), "detached-")
	})

	t.Run("non-repository", func(t *testing.T) {
		assert.Equal(t, BranchUnknown, CurrentBranch(t.TempDir()))
	})
}

func TestIsRepository(t *testing.T) {
	requireGit(t)

	assert.True(t, IsRepository(newTestRepo(t)))
	assert.False(t, IsRepository(t.TempDir()))
}

func TestHeadCommit(t *testing.T) {
	requireGit(t)

	dir := newTestRepo(t)
	assert.Len(t, HeadCommit(dir), 40)
	assert.Empty(t, HeadCommit(t.TempDir()))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0644))
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}
