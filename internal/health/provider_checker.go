package health

import (
	"context"

	"github.com/felixgeelhaar/dayflow/internal/provider"
)

// ProviderChecker verifies the configured AI provider responds.
type ProviderChecker struct {
	client provider.Client
}

// NewProviderChecker creates a health checker for the active provider.
func NewProviderChecker(client provider.Client) *ProviderChecker {
	return &ProviderChecker{client: client}
}

// Name returns the name of this health check.
func (c *ProviderChecker) Name() string {
	return "ai-provider"
}

// Check verifies the provider is configured and reachable. An unreachable
// provider is degraded, not unhealthy: the session machine and history
// queries still work without it.
func (c *ProviderChecker) Check(ctx context.Context) *Result {
	if c.client == nil {
		return Unhealthy("no AI provider configured").
			WithDetail("suggestion", "set a provider in config.yaml or the <NAME>_API_KEY environment variable")
	}

	info := c.client.Info()

	if !c.client.IsAvailable() {
		return Unhealthy("provider has no credentials").
			WithDetail("provider", info.Name).
			WithDetail("model", info.Model)
	}

	if err := c.client.Health(ctx); err != nil {
		return Degraded("provider unreachable").
			WithDetail("provider", info.Name).
			WithDetail("model", info.Model).
			WithDetail("error", err.Error())
	}

	return Healthy("provider responding").
		WithDetail("provider", info.Name).
		WithDetail("model", info.Model)
}
