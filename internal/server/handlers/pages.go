package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
	"git.home.luguber.info/inful/docpages/internal/navigation"
	"git.home.luguber.info/inful/docpages/internal/site"
)

// NotFoundPath is the route of the standalone not-found page.
const NotFoundPath = "/404"

// PageHandlers renders site pages.
type PageHandlers struct {
	composer     *site.Composer
	recorder     metrics.Recorder
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewPageHandlers wires the composer. recorder may be nil.
func NewPageHandlers(composer *site.Composer, recorder metrics.Recorder, logger *slog.Logger) *PageHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandlers{
		composer:     composer,
		recorder:     metrics.OrNoop(recorder),
		logger:       logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}
}

// HandleRoot redirects to the first project, or to the not-found page when
// there are no projects.
func (h *PageHandlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	target := NotFoundPath
	if projects := h.composer.Repository().Scanner().Projects(); len(projects) > 0 {
		target = navigation.PageHref(projects[0], "")
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// HandlePage renders /projects/{project} and /projects/{project}/{page}.
// Missing pages and pages that fail to load render the not-found page.
func (h *PageHandlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	project, page := r.PathValue("project"), r.PathValue("page")

	start := time.Now()
	doc, err := h.composer.Compose(project, page)
	if err != nil {
		outcome := metrics.RenderNotFound
		if site.IsNotFound(err) {
			h.logger.Debug("Page not found", logfields.Project(project), logfields.Page(page))
		} else {
			outcome = metrics.RenderError
			h.logger.Warn("Page failed to load", logfields.Project(project), logfields.Page(page), logfields.Error(err))
		}
		h.recorder.ObservePageRender(time.Since(start), outcome)
		h.notFound(w, r, project)
		return
	}

	var buf bytes.Buffer
	if err := h.composer.WritePage(&buf, doc); err != nil {
		h.recorder.ObservePageRender(time.Since(start), metrics.RenderError)
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	h.recorder.ObservePageRender(time.Since(start), metrics.RenderOK)
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// HandleNotFound renders the not-found page with status 404.
func (h *PageHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "")
}

// HandleInvalidAssetPath answers asset URLs that lack a project or file.
func (h *PageHandlers) HandleInvalidAssetPath(w http.ResponseWriter, r *http.Request) {
	h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationError("Invalid path").
		WithContext("path", r.URL.Path).
		Build())
}

func (h *PageHandlers) notFound(w http.ResponseWriter, r *http.Request, project string) {
	var buf bytes.Buffer
	if err := h.composer.WriteNotFound(&buf, h.composer.NotFound(project)); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed writing HTML response body", logfields.Error(err))
	}
}
