// Package api implements the HTTP status and Prometheus metrics endpoint.
package api

import "github.com/psaab/shellac/pkg/metrics"

// Response is the standard JSON response envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse holds interpreter status information.
type StatusResponse struct {
	Uptime string           `json:"uptime"`
	Stats  metrics.Snapshot `json:"stats"`
}
