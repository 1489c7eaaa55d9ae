// Package handlers implements the page, not-found and monitoring endpoints.
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docpages/internal/logfields"
)

// writeJSON encodes v into a buffer first so a failed encode never leaves a
// partial response; the caller reports that error through its adapter.
// ?pretty=1 or ?pretty=true indents the output.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("Client went away while writing JSON", logfields.Error(err))
	}
	return nil
}
