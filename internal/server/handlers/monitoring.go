package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docpages/internal/content"
	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/server/responses"
	"git.home.luguber.info/inful/docpages/internal/version"
)

// MonitoringHandlers serves the liveness and readiness endpoints.
type MonitoringHandlers struct {
	scanner      *content.Scanner
	startTime    time.Time
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(scanner *content.Scanner, logger *slog.Logger) *MonitoringHandlers {
	return &MonitoringHandlers{
		scanner:      scanner,
		startTime:    time.Now(),
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}
}

// HandleHealthCheck reports that the process is serving.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	if err := writeJSON(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write health response").Build())
	}
}

// HandleReadiness reports ready once the content root can be read.
func (h *MonitoringHandlers) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ready := &responses.ReadinessResponse{Status: "ready", ContentRoot: h.scanner.Root()}
	status := http.StatusOK
	if h.scanner.Exists() {
		ready.Projects = len(h.scanner.Projects())
	} else {
		ready.Status = "content root missing"
		status = http.StatusServiceUnavailable
	}
	if err := writeJSON(w, r, status, ready); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write readiness response").Build())
	}
}
