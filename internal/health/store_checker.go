package health

import (
	"context"

	"github.com/felixgeelhaar/dayflow/internal/session"
)

// SessionStoreChecker verifies the session state file loads cleanly.
type SessionStoreChecker struct {
	store session.Store
}

// NewSessionStoreChecker creates a health checker for the session store.
func NewSessionStoreChecker(store session.Store) *SessionStoreChecker {
	return &SessionStoreChecker{store: store}
}

// Name returns the name of this health check.
func (c *SessionStoreChecker) Name() string {
	return "session-store"
}

// Check loads the persisted session. A corrupt state file is unhealthy
// because every focus session transition writes through it.
func (c *SessionStoreChecker) Check(ctx context.Context) *Result {
	state, err := c.store.Load()
	if err != nil {
		return Unhealthy("session state unreadable").
			WithDetail("error", err.Error())
	}

	return Healthy("session state loads").
		WithDetail("phase", string(state.Phase)).
		WithDetail("tasks", len(state.Schedule))
}

// HistoryChecker verifies the focus history database answers queries.
type HistoryChecker struct {
	ping func(ctx context.Context) error
}

// NewHistoryChecker creates a health checker around a database ping.
func NewHistoryChecker(ping func(ctx context.Context) error) *HistoryChecker {
	return &HistoryChecker{ping: ping}
}

// Name returns the name of this health check.
func (c *HistoryChecker) Name() string {
	return "history-db"
}

// Check pings the database. History is a long-term record, not in the
// request path, so a failure is degraded rather than unhealthy.
func (c *HistoryChecker) Check(ctx context.Context) *Result {
	if c.ping == nil {
		return Degraded("history database not configured")
	}

	if err := c.ping(ctx); err != nil {
		return Degraded("history database unreachable").
			WithDetail("error", err.Error())
	}

	return Healthy("history database responding")
}
