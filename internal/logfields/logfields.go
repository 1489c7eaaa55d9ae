package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyProject    = "project"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyRoute      = "route"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Project(slug string) slog.Attr   { return slog.String(KeyProject, slug) }
func Page(slug string) slog.Attr      { return slog.String(KeyPage, slug) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Route(pattern string) slog.Attr  { return slog.String(KeyRoute, pattern) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
