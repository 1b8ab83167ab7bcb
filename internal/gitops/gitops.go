package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Commit when the work tree is clean.
var ErrNothingToCommit = errors.New("nothing to commit")

// Repo is a workspace under git version control. Commits are made as
// Author for both the author and committer identity.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Init creates the repository if it does not exist yet.
func (r Repo) Init(ctx context.Context) error {
	if IsRepo(r.Dir) {
		return nil
	}
	if _, err := r.git(ctx, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// Dirty reports whether there are uncommitted changes under paths, or
// anywhere in the work tree when no paths are given.
func (r Repo) Dirty(ctx context.Context, paths ...string) (bool, error) {
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	out, err := r.git(ctx, args...)
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// Commit stages paths (everything when empty) and commits them. It returns
// the short hash of the new commit.
func (r Repo) Commit(ctx context.Context, message string, paths ...string) (string, error) {
	add := []string{"add", "-A", "--"}
	if len(paths) == 0 {
		add = append(add, ".")
	}
	if _, err := r.git(ctx, append(add, paths...)...); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	if _, err := r.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return "", ErrNothingToCommit
	}

	author := fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail)
	if _, err := r.git(ctx, "commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	hash, err := r.git(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(hash), nil
}

func (r Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.AuthorName,
		"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w", msg, err)
		}
		return "", err
	}
	return stdout.String(), nil
}
