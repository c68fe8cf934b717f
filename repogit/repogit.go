// Package repogit manages the working clones the review service operates on:
// cloning with token auth, enumerating source files, rewriting fixed files,
// and committing fix branches back to the origin.
package repogit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/gitpal-dev/gitpal/guard"
)

// ErrNoChanges is returned by CommitAndPush when the worktree is clean.
var ErrNoChanges = errors.New("repogit: no changes detected")

// Bot identity used for fix commits.
const (
	botName  = "GitPal Bot"
	botEmail = "bot@gitpal.dev"
)

// SourceExtensions are the file extensions treated as analyzable source.
var SourceExtensions = []string{".py", ".js", ".ts", ".java", ".cpp", ".c"}

// Repository is a local working clone.
type Repository struct {
	repo *gogit.Repository
	dir  string
}

// Clone clones repoURL into dir. When token is non-empty it is sent as
// HTTP basic auth, which is how GitHub accepts OAuth tokens for git.
func Clone(ctx context.Context, repoURL, token, dir string) (*Repository, error) {
	opts := &gogit.CloneOptions{URL: repoURL}
	if token != "" {
		opts.Auth = tokenAuth(token)
	}

	repo, err := gogit.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, fmt.Errorf("repogit: clone %s: %w", repoURL, err)
	}
	return &Repository{repo: repo, dir: dir}, nil
}

// Open opens an existing clone at dir.
func Open(dir string) (*Repository, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("repogit: open %s: %w", dir, err)
	}
	return &Repository{repo: repo, dir: dir}, nil
}

// Root returns the worktree root of the clone.
func (r *Repository) Root() string { return r.dir }

// ListSourceFiles walks the worktree and returns the relative paths of all
// source files, skipping the .git directory.
func (r *Repository) ListSourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range SourceExtensions {
			if strings.HasSuffix(d.Name(), ext) {
				rel, err := filepath.Rel(r.dir, path)
				if err != nil {
					return err
				}
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repogit: list source files: %w", err)
	}
	return files, nil
}

// WriteFix replaces the file at relPath (relative to the clone root) with
// content, creating parent directories as needed. The path is containment
// checked so a crafted relative path cannot escape the clone.
func (r *Repository) WriteFix(relPath, content string) error {
	abs, err := guard.SafePath(r.dir, strings.TrimPrefix(relPath, "/"))
	if err != nil {
		return fmt.Errorf("repogit: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("repogit: mkdir for fix: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("repogit: write fix: %w", err)
	}
	return nil
}

// IsDirty reports whether the worktree has uncommitted changes.
func (r *Repository) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("repogit: worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("repogit: status: %w", err)
	}
	return !status.IsClean(), nil
}

// FixBranchName returns the branch name for a fix commit at the given time,
// e.g. "gitpal-fixes-20260823-142500".
func FixBranchName(now time.Time) string {
	return "gitpal-fixes-" + now.UTC().Format("20060102-150405")
}

// CommitAndPush creates branch, stages every change, commits it with the bot
// identity, and pushes the branch to origin. Returns ErrNoChanges when the
// worktree is clean.
func (r *Repository) CommitAndPush(ctx context.Context, token, branch, message string) error {
	dirty, err := r.IsDirty()
	if err != nil {
		return err
	}
	if !dirty {
		return ErrNoChanges
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("repogit: worktree: %w", err)
	}

	if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
		Keep:   true,
	}); err != nil {
		return fmt.Errorf("repogit: create branch %s: %w", branch, err)
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("repogit: stage changes: %w", err)
	}

	sig := &object.Signature{Name: botName, Email: botEmail, When: time.Now()}
	if _, err := wt.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("repogit: commit: %w", err)
	}

	pushOpts := &gogit.PushOptions{
		RemoteName: "origin",
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
		},
	}
	if token != "" {
		pushOpts.Auth = tokenAuth(token)
	}
	if err := r.repo.PushContext(ctx, pushOpts); err != nil {
		return fmt.Errorf("repogit: push branch %s: %w", branch, err)
	}
	return nil
}

func tokenAuth(token string) *githttp.BasicAuth {
	// GitHub ignores the username for token auth; any non-empty value works.
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}
}
