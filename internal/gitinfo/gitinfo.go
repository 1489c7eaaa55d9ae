// Package gitinfo reads page modification dates from git history.
package gitinfo

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docpages/internal/logfields"
)

// Dates answers "when was this file last committed" for one work tree.
type Dates struct {
	mu     sync.Mutex
	repo   *git.Repository
	root   string
	logger *slog.Logger
}

// Open finds the repository containing dir, searching parent directories.
// It returns git.ErrRepositoryNotExists when dir is not inside a work tree.
func Open(dir string, logger *slog.Logger) (*Dates, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		root = wt.Filesystem.Root()
	}
	return &Dates{repo: repo, root: root, logger: logger}, nil
}

// IsNotRepository reports whether err from Open means there is no repository.
func IsNotRepository(err error) bool {
	return errors.Is(err, git.ErrRepositoryNotExists)
}

// LastModified returns the committer time of the newest commit touching path.
func (d *Dates) LastModified(path string) (time.Time, bool) {
	rel, ok := d.relative(path)
	if !ok {
		return time.Time{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	iter, err := d.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		d.logger.Debug("git log failed", logfields.Path(rel), logfields.Error(err))
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return time.Time{}, false
	}
	return committed(commit), true
}

func committed(c *object.Commit) time.Time {
	return c.Committer.When
}

func (d *Dates) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(d.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
