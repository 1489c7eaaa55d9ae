package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docpages"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	httpDuration      *prom.HistogramVec
	httpRequests      *prom.CounterVec
	renderDuration    *prom.HistogramVec
	assetResults      *prom.CounterVec
	inventory         *prom.GaugeVec
	contentChanges    prom.Counter
	liveReloadClients prom.Gauge
	liveReloadEvents  prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status",
		}, []string{"route", "method", "status"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Time to load, render and compose one page",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		assetResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "asset_responses_total",
			Help:      "Static asset responses by status",
		}, []string{"status"}),
		inventory: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "content_items",
			Help:      "Number of projects, pages and assets in the content tree",
		}, []string{"kind"}),
		contentChanges: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "content_changes_total",
			Help:      "Content fingerprint changes observed by the watcher",
		}),
		liveReloadClients: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "livereload_clients",
			Help:      "Connected live reload clients",
		}),
		liveReloadEvents: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_broadcasts_total",
			Help:      "Live reload broadcasts sent",
		}),
	}
	reg.MustRegister(
		pr.httpDuration, pr.httpRequests, pr.renderDuration, pr.assetResults,
		pr.inventory, pr.contentChanges, pr.liveReloadClients, pr.liveReloadEvents,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if p == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	p.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
	p.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObservePageRender(d time.Duration, outcome RenderOutcome) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncAssetResult(status int) {
	if p == nil {
		return
	}
	p.assetResults.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) SetInventory(projects, pages, assets int) {
	if p == nil {
		return
	}
	p.inventory.WithLabelValues("projects").Set(float64(projects))
	p.inventory.WithLabelValues("pages").Set(float64(pages))
	p.inventory.WithLabelValues("assets").Set(float64(assets))
}

func (p *PrometheusRecorder) IncContentChange() {
	if p == nil {
		return
	}
	p.contentChanges.Inc()
}

func (p *PrometheusRecorder) SetLiveReloadClients(n int) {
	if p == nil {
		return
	}
	p.liveReloadClients.Set(float64(n))
}

func (p *PrometheusRecorder) IncLiveReloadBroadcast() {
	if p == nil {
		return
	}
	p.liveReloadEvents.Inc()
}
