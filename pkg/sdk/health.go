package swapdex

import (
	"context"

	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}

// Healthy reports whether the engine is reachable. A degraded lock store
// still counts as healthy for reads.
func (h HealthStatus) Healthy() bool {
	return h.Status != string(healthuc.Unhealthy)
}

// Health checks the engine and, when configured, the Redis lock store.
func (c *Client[H]) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
