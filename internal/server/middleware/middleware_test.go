package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/metrics"
)

type httpRecorder struct {
	metrics.NoopRecorder
	routes   []string
	statuses []int
}

func (h *httpRecorder) ObserveHTTPRequest(route, _ string, status int, _ time.Duration) {
	h.routes = append(h.routes, route)
	h.statuses = append(h.statuses, status)
}

func newChain(buf *bytes.Buffer, rec metrics.Recorder) func(http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return Chain(logger, derrors.NewHTTPErrorAdapter(logger), rec)
}

func TestChain_LogsAndRecordsPattern(t *testing.T) {
	var logs bytes.Buffer
	rec := &httpRecorder{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects/{project}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := newChain(&logs, rec)(mux)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/00_a", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, []string{"GET /projects/{project}"}, rec.routes)
	assert.Equal(t, []int{http.StatusTeapot}, rec.statuses)
	assert.Contains(t, logs.String(), "HTTP request")
	assert.Contains(t, logs.String(), "status=418")
	assert.Contains(t, logs.String(), "request_id=")
}

func TestChain_RequestID(t *testing.T) {
	var logs bytes.Buffer
	var seen string
	h := newChain(&logs, nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, incoming, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "<script>", seen)
}

func TestChain_RecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	h := newChain(&logs, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "boom")
	assert.Contains(t, logs.String(), "HTTP handler panic")
}

func TestResponseWriter_Flush(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	rw.Flush()
	assert.True(t, w.Flushed)
}
