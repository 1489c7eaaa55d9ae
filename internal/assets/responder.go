// Package assets serves non-Markdown files from project directories.
package assets

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
)

// CacheControl is sent with every successful asset response.
const CacheControl = "public, max-age=31536000, immutable"

const defaultContentType = "application/octet-stream"

// Responder streams files from <root>/<project>/<file>.
type Responder struct {
	root     string
	adapter  *derrors.HTTPErrorAdapter
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewResponder resolves root to an absolute path once. recorder may be nil.
func NewResponder(root string, recorder metrics.Recorder, logger *slog.Logger) (*Responder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "cannot resolve content root").
			WithContext("root", root).
			Build()
	}
	return &Responder{
		root:     filepath.Clean(abs),
		adapter:  derrors.NewHTTPErrorAdapter(logger),
		recorder: metrics.OrNoop(recorder),
		logger:   logger,
	}, nil
}

// Root returns the absolute content root.
func (a *Responder) Root() string { return a.root }

// ServeHTTP reads the project and file path values set by the router.
func (a *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Serve(w, r, r.PathValue("project"), r.PathValue("file"))
}

// Serve writes the asset project/file to w.
func (a *Responder) Serve(w http.ResponseWriter, r *http.Request, project, file string) {
	status, err := a.serve(w, project, file)
	a.recorder.IncAssetResult(status)
	if err != nil {
		a.adapter.WriteErrorResponse(w, r, err)
	}
}

func (a *Responder) serve(w http.ResponseWriter, project, file string) (int, error) {
	if project == "" || file == "" {
		return http.StatusBadRequest, derrors.ValidationError("Invalid path").Build()
	}

	rel, err := a.Resolve(project, file)
	if err != nil {
		return http.StatusForbidden, err
	}

	root, err := os.OpenRoot(a.root)
	if err != nil {
		return http.StatusInternalServerError, derrors.WrapError(err, derrors.CategoryFileSystem, "cannot open content root").Build()
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return http.StatusNotFound, notFound(project, file)
		}
		return http.StatusInternalServerError, derrors.WrapError(err, derrors.CategoryFileSystem, "cannot open asset").
			WithContext("project", project).
			WithContext("file", file).
			Build()
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return http.StatusInternalServerError, derrors.WrapError(err, derrors.CategoryFileSystem, "cannot stat asset").
			WithContext("project", project).
			WithContext("file", file).
			Build()
	}
	if !st.Mode().IsRegular() {
		return http.StatusNotFound, notFound(project, file)
	}

	contentType := mime.TypeByExtension(filepath.Ext(file))
	if contentType == "" {
		contentType = defaultContentType
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(st.Size(), 10))
	h.Set("Cache-Control", CacheControl)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		// Headers are gone; a client disconnect lands here too.
		a.logger.Debug("Asset stream interrupted",
			logfields.Project(project), logfields.File(file), logfields.Error(err))
	}
	return http.StatusOK, nil
}

// Resolve joins project and file onto the content root and rejects results
// that are not strictly inside it. The returned path is relative to the root.
// No filesystem access happens here.
func (a *Responder) Resolve(project, file string) (string, error) {
	target, err := filepath.Abs(filepath.Join(a.root, project, file))
	if err != nil || !strings.HasPrefix(target, a.root+string(filepath.Separator)) {
		return "", derrors.ForbiddenError("Access denied").
			WithContext("project", project).
			WithContext("file", file).
			Build()
	}
	rel, err := filepath.Rel(a.root, target)
	if err != nil {
		return "", derrors.ForbiddenError("Access denied").WithCause(err).Build()
	}
	return rel, nil
}

func notFound(project, file string) error {
	return derrors.NotFoundError("File not found").
		WithContext("project", project).
		WithContext("file", file).
		Build()
}
