// Package git reads the revision of the checkout a batch run maps.
package git

import (
	"os/exec"
	"strings"
)

// Operations defines the git queries used to describe a checkout.
// This allows mocking git commands in tests.
type Operations interface {
	// CurrentBranch returns the current branch name.
	// For detached HEAD, returns "detached-{short-hash}".
	// Returns "" outside a repository.
	CurrentBranch(dir string) string

	// HeadCommit returns the full hash of HEAD, or "" without commits.
	HeadCommit(dir string) string

	// RemoteURL returns the git remote URL.
	// Tries 'origin' first, then falls back to first available remote.
	// Returns empty string if no remote configured.
	RemoteURL(dir string) string
}

// Revision identifies the checkout a set of maps was generated from.
type Revision struct {
	Branch string `yaml:"branch"`
	Commit string `yaml:"commit,omitempty"`
	Remote string `yaml:"remote,omitempty"`
}

// Describe returns the revision of dir, or nil when dir is not inside a
// git repository.
func Describe(ops Operations, dir string) *Revision {
	branch := ops.CurrentBranch(dir)
	if branch == "" {
		return nil
	}
	return &Revision{
		Branch: branch,
		Commit: ops.HeadCommit(dir),
		Remote: ops.RemoteURL(dir),
	}
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	return strings.TrimSpace(string(output)), err
}

func (g *gitOps) CurrentBranch(dir string) string {
	if branch, err := run(dir, "branch", "--show-current"); err == nil && branch != "" {
		return branch
	}
	// Might be detached HEAD
	short, err := run(dir, "rev-parse", "--short", "HEAD")
	if err != nil || short == "" {
		return ""
	}
	return "detached-" + short
}

func (g *gitOps) HeadCommit(dir string) string {
	commit, err := run(dir, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return commit
}

func (g *gitOps) RemoteURL(dir string) string {
	if url, err := run(dir, "remote", "get-url", "origin"); err == nil {
		return url
	}

	// Fallback: first remote
	remotes, err := run(dir, "remote")
	if err != nil || remotes == "" {
		return ""
	}
	url, _ := run(dir, "remote", "get-url", strings.Split(remotes, "\n")[0])
	return url
}
