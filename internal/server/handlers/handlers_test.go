package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpages/internal/content"
	"git.home.luguber.info/inful/docpages/internal/markdown"
	"git.home.luguber.info/inful/docpages/internal/navigation"
	"git.home.luguber.info/inful/docpages/internal/site"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newComposer(t *testing.T, root string) *site.Composer {
	t.Helper()
	repo := content.NewRepository(content.NewScanner(root, quiet()), quiet())
	c, err := site.NewComposer(repo, markdown.NewRenderer(markdown.DefaultOptions()), navigation.NewAssembler("en"), nil, site.Options{SiteTitle: "Docs"}, quiet())
	require.NoError(t, err)
	return c
}

func TestHandlePage_UsesPathValues(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "00_a"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "00_a", "guide.md"), []byte("# Guide\n"), 0o600))
	h := NewPageHandlers(newComposer(t, root), nil, quiet())

	req := httptest.NewRequest(http.MethodGet, "/projects/00_a/guide", nil)
	req.SetPathValue("project", "00_a")
	req.SetPathValue("page", "guide")
	rec := httptest.NewRecorder()
	h.HandlePage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Guide</h1>")

	req.SetPathValue("page", "missing")
	rec = httptest.NewRecorder()
	h.HandlePage(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandleInvalidAssetPath(t *testing.T) {
	h := NewPageHandlers(newComposer(t, t.TempDir()), nil, quiet())
	rec := httptest.NewRecorder()
	h.HandleInvalidAssetPath(rec, httptest.NewRequest(http.MethodGet, "/api/projects/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid path", body["error"])
}

func TestMonitoring_PrettyJSON(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "00_a"), 0o750))
	h := NewMonitoringHandlers(content.NewScanner(root, quiet()), quiet())

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/readyz?pretty=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "\n  \"status\": \"ready\""), rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "\n  ")
}
