package health

import (
	"context"
	"sync/atomic"
	"time"
)

// ProbeManager extends Manager with Kubernetes-style liveness, readiness,
// and startup probes.
type ProbeManager struct {
	*Manager

	startTime   time.Time
	initialized atomic.Bool
	inShutdown  atomic.Bool
	version     string
}

// NewProbeManager creates a probe-aware health manager.
func NewProbeManager(version string) *ProbeManager {
	return &ProbeManager{
		Manager:   NewManager(),
		startTime: time.Now(),
		version:   version,
	}
}

// MarkInitialized lets the startup probe pass.
func (pm *ProbeManager) MarkInitialized() {
	pm.initialized.Store(true)
}

// MarkShutdown fails readiness probes so traffic drains before exit.
func (pm *ProbeManager) MarkShutdown() {
	pm.inShutdown.Store(true)
}

// IsInitialized reports whether initialization has completed.
func (pm *ProbeManager) IsInitialized() bool {
	return pm.initialized.Load()
}

// IsShuttingDown reports whether shutdown has begun.
func (pm *ProbeManager) IsShuttingDown() bool {
	return pm.inShutdown.Load()
}

// Uptime returns how long the service has been running.
func (pm *ProbeManager) Uptime() time.Duration {
	return time.Since(pm.startTime)
}

// Version returns the service version.
func (pm *ProbeManager) Version() string {
	return pm.version
}

// ProbeResult is the JSON body served on probe endpoints.
type ProbeResult struct {
	Status    Status             `json:"status"`
	Version   string             `json:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// CheckLiveness verifies the process is responsive. It never runs
// dependency checks; a shutting-down process is still alive, just degraded.
func (pm *ProbeManager) CheckLiveness(ctx context.Context) *ProbeResult {
	status := StatusHealthy
	if pm.IsShuttingDown() {
		status = StatusDegraded
	}
	return pm.probeResult(status, nil)
}

// CheckReadiness verifies the service can serve requests. Shutdown fails
// readiness immediately; otherwise all registered checks run.
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return pm.probeResult(StatusUnhealthy, nil)
	}

	checks := pm.Manager.Check(ctx)
	return pm.probeResult(pm.Manager.OverallStatus(checks), checks)
}

// CheckStartup verifies initialization has completed. No dependency checks
// run here.
func (pm *ProbeManager) CheckStartup(ctx context.Context) *ProbeResult {
	status := StatusUnhealthy
	if pm.IsInitialized() {
		status = StatusHealthy
	}
	return pm.probeResult(status, nil)
}

func (pm *ProbeManager) probeResult(status Status, checks map[string]*Result) *ProbeResult {
	if checks == nil {
		checks = make(map[string]*Result)
	}
	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    checks,
		Timestamp: time.Now(),
	}
}
