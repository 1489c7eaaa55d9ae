// Package metrics provides the observability hooks for the site server.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing; PrometheusRecorder forwards to a Prometheus
// registry which HTTPHandler exposes on the metrics route.
package metrics
