// Package responses defines JSON response types used by the HTTP handlers.
package responses

import "time"

// HealthResponse represents the liveness endpoint response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// ReadinessResponse represents the readiness endpoint response.
type ReadinessResponse struct {
	Status      string `json:"status"`
	ContentRoot string `json:"content_root"`
	Projects    int    `json:"projects"`
}
