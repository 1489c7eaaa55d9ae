package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter writes errors as JSON responses and logs them.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter returns an adapter logging to logger, or slog.Default.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the JSON error payload written to clients.
type HTTPErrorResponse struct {
	Error string `json:"error"`
}

// StatusCodeFor maps err to a response status. Unclassified errors are 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if c, ok := AsClassified(err); ok {
		return c.Category().HTTPStatus()
	}
	return http.StatusInternalServerError
}

// WriteErrorResponse writes {"error": ...} with the mapped status. Server-side
// failures get a generic message; the full error is only logged.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	status := a.StatusCodeFor(err)
	body, _ := json.Marshal(a.FormatErrorResponse(err))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	attrs := []slog.Attr{slog.String("path", r.URL.Path), slog.Int("status", status)}
	level := slog.LevelError
	if c, ok := AsClassified(err); ok {
		level = c.Severity().Level()
		attrs = append(attrs, c.Context().attrs()...)
	}
	a.logger.LogAttrs(r.Context(), level, err.Error(), attrs...)
}

// FormatErrorResponse builds the public payload for err.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	status := a.StatusCodeFor(err)
	switch c, ok := AsClassified(err); {
	case err == nil:
		return HTTPErrorResponse{}
	case status >= http.StatusInternalServerError:
		return HTTPErrorResponse{Error: "Internal server error"}
	case ok:
		return HTTPErrorResponse{Error: c.Message()}
	default:
		return HTTPErrorResponse{Error: http.StatusText(status)}
	}
}
