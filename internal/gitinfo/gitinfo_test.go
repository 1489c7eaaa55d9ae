package gitinfo

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func commitFile(t *testing.T, repo *git.Repository, root, rel, body string, when time.Time) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(filepath.ToSlash(rel))
	require.NoError(t, err)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	_, err = wt.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestDates_LastModified(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	first := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	second := time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC)
	commitFile(t, repo, root, "content/projects/00_a/index.md", "one", first)
	commitFile(t, repo, root, "content/projects/00_a/setup.md", "two", second)

	d, err := Open(filepath.Join(root, "content", "projects"), quiet())
	require.NoError(t, err)

	when, ok := d.LastModified(filepath.Join(root, "content/projects/00_a/index.md"))
	require.True(t, ok)
	assert.True(t, first.Equal(when), when)

	when, ok = d.LastModified(filepath.Join(root, "content/projects/00_a/setup.md"))
	require.True(t, ok)
	assert.True(t, second.Equal(when), when)

	_, ok = d.LastModified(filepath.Join(root, "content/projects/00_a/untracked.md"))
	assert.False(t, ok)

	_, ok = d.LastModified(filepath.Join(t.TempDir(), "outside.md"))
	assert.False(t, ok)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir(), quiet())
	require.Error(t, err)
	assert.True(t, IsNotRepository(err))
}
