// Package health provides health checks for the dayflow service's
// dependencies: the AI provider, the session state file, and the focus
// history database.
//
// Example usage:
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewProviderChecker(client))
//	manager.AddChecker(health.NewSessionStoreChecker(store))
//
//	results := manager.Check(ctx)
package health

import (
	"context"
	"time"
)

// Checker is a single pluggable health check.
type Checker interface {
	// Name is the unique, lowercase-hyphenated check name
	// (e.g. "ai-provider", "session-store").
	Name() string

	// Check performs the check. It must respect the context deadline and
	// return quickly; the manager applies a per-check timeout.
	Check(ctx context.Context) *Result
}

// Status represents the health check status.
type Status string

const (
	// StatusHealthy indicates the checked component is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded indicates the component is partially working and the
	// service can continue with reduced functionality.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates the component is not working.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one health check.
type Result struct {
	Status  Status
	Message string

	// Details carries structured information: versions, latencies, error
	// strings.
	Details map[string]interface{}

	// Latency is how long the check took.
	Latency time.Duration
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail and returns the result for chaining.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

// Healthy creates a healthy result.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
