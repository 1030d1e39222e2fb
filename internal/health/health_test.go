package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayflow/internal/provider"
	"github.com/felixgeelhaar/dayflow/internal/session"
)

type stubChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (c *stubChecker) Name() string { return c.name }

func (c *stubChecker) Check(ctx context.Context) *Result {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return Unhealthy("check timed out")
		}
	}
	return c.result
}

func TestManagerRunsAllChecks(t *testing.T) {
	m := NewManager()
	m.AddChecker(&stubChecker{name: "a", result: Healthy("ok")})
	m.AddChecker(&stubChecker{name: "b", result: Degraded("meh")})

	results := m.Check(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["a"].Status != StatusHealthy || results["b"].Status != StatusDegraded {
		t.Errorf("unexpected results: %+v", results)
	}
	if results["a"].Latency == 0 {
		t.Error("latency should be recorded")
	}
}

func TestManagerTimeout(t *testing.T) {
	m := NewManager().WithTimeout(20 * time.Millisecond)
	m.AddChecker(&stubChecker{name: "slow", result: Healthy("ok"), delay: time.Second})

	results := m.Check(context.Background())
	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("expected timed-out check to be unhealthy, got %v", results["slow"].Status)
	}
}

func TestOverallStatus(t *testing.T) {
	m := NewManager()

	tests := []struct {
		name    string
		results map[string]*Result
		want    Status
	}{
		{"empty", map[string]*Result{}, StatusHealthy},
		{"all healthy", map[string]*Result{"a": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]*Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]*Result{"a": Degraded(""), "b": Unhealthy("")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbeLifecycle(t *testing.T) {
	pm := NewProbeManager("1.2.3")

	if got := pm.CheckStartup(context.Background()); got.Status != StatusUnhealthy {
		t.Errorf("startup before init should be unhealthy, got %v", got.Status)
	}

	pm.MarkInitialized()
	if got := pm.CheckStartup(context.Background()); got.Status != StatusHealthy {
		t.Errorf("startup after init should be healthy, got %v", got.Status)
	}
	if got := pm.CheckLiveness(context.Background()); got.Status != StatusHealthy {
		t.Errorf("liveness should be healthy, got %v", got.Status)
	}

	pm.MarkShutdown()
	if got := pm.CheckLiveness(context.Background()); got.Status != StatusDegraded {
		t.Errorf("liveness during shutdown should be degraded, got %v", got.Status)
	}
	if got := pm.CheckReadiness(context.Background()); got.Status != StatusUnhealthy {
		t.Errorf("readiness during shutdown should be unhealthy, got %v", got.Status)
	}
}

func TestProbeReadinessAggregatesChecks(t *testing.T) {
	pm := NewProbeManager("dev")
	pm.MarkInitialized()
	pm.AddChecker(&stubChecker{name: "dep", result: Degraded("slow dependency")})

	result := pm.CheckReadiness(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("expected degraded readiness, got %v", result.Status)
	}
	if len(result.Checks) != 1 {
		t.Errorf("expected dependency check in result, got %+v", result.Checks)
	}
	if result.Version != "dev" {
		t.Errorf("unexpected version: %s", result.Version)
	}
}

type stubProvider struct {
	available bool
	healthErr error
}

func (p *stubProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	return nil, errors.New("not used")
}
func (p *stubProvider) Info() *provider.Info {
	return &provider.Info{Name: "stub", Model: "stub-1"}
}
func (p *stubProvider) IsAvailable() bool            { return p.available }
func (p *stubProvider) Health(context.Context) error { return p.healthErr }
func (p *stubProvider) Close() error                 { return nil }

func TestProviderChecker(t *testing.T) {
	tests := []struct {
		name   string
		client provider.Client
		want   Status
	}{
		{"nil client", nil, StatusUnhealthy},
		{"no credentials", &stubProvider{available: false}, StatusUnhealthy},
		{"unreachable", &stubProvider{available: true, healthErr: errors.New("boom")}, StatusDegraded},
		{"healthy", &stubProvider{available: true}, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewProviderChecker(tt.client)
			if got := c.Check(context.Background()); got.Status != tt.want {
				t.Errorf("Check() = %v, want %v", got.Status, tt.want)
			}
		})
	}
}

func TestSessionStoreChecker(t *testing.T) {
	store := session.NewMemoryStore()
	c := NewSessionStoreChecker(store)

	result := c.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("expected healthy store, got %v: %s", result.Status, result.Message)
	}
}

func TestHistoryChecker(t *testing.T) {
	healthy := NewHistoryChecker(func(ctx context.Context) error { return nil })
	if got := healthy.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("expected healthy, got %v", got.Status)
	}

	broken := NewHistoryChecker(func(ctx context.Context) error { return errors.New("locked") })
	if got := broken.Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("expected degraded, got %v", got.Status)
	}

	unconfigured := NewHistoryChecker(nil)
	if got := unconfigured.Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("expected degraded, got %v", got.Status)
	}
}
