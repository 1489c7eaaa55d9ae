package httpserver

import (
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpages/internal/assets"
	"git.home.luguber.info/inful/docpages/internal/metrics"
	"git.home.luguber.info/inful/docpages/internal/site"
)

// LiveReloadHub supports the LiveReload SSE endpoint and broadcast notifications.
type LiveReloadHub interface {
	http.Handler
	Broadcast(fingerprint string)
	Shutdown()
}

// Options configures the server wiring.
type Options struct {
	Composer *site.Composer
	Assets   *assets.Responder

	// Optional: metrics. A nil Registry disables the metrics route.
	Recorder    metrics.Recorder
	Registry    *prom.Registry
	MetricsPath string

	// Optional: live reload support (serve --watch).
	LiveReloadHub LiveReloadHub

	Logger *slog.Logger
}
