// Package git shells out to the git binary for the repository facts stamped
// onto ingested documents. Every function degrades gracefully when git is
// not installed or the path is not inside a repository.
package git

import (
	"os/exec"
	"strings"
)

// BranchUnknown is reported when no branch can be determined.
const BranchUnknown = "unknown"

// CurrentBranch returns the checked-out branch for the repository containing
// path. A detached HEAD reports "detached-{short-hash}"; a missing git
// binary or a non-repository reports BranchUnknown.
func CurrentBranch(path string) string {
	if out, err := run(path, "branch", "--show-current"); err == nil && out != "" {
		return out
	}
	out, err := run(path, "rev-parse", "--short", "HEAD")
	if err != nil || out == "" {
		return BranchUnknown
	}
	return "detached-" + out
}

// IsRepository reports whether path is inside a git work tree.
func IsRepository(path string) bool {
	_, err := run(path, "rev-parse", "--git-dir")
	return err == nil
}

// HeadCommit returns the full HEAD commit hash, or "" when unavailable.
func HeadCommit(path string) string {
	out, err := run(path, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
