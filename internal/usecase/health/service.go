// Package health aggregates dependency checks for the /health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine Pinger
	lock   Pinger
}

// New creates a Service. lock can be nil when swaps use the in-process lock.
func New(engine, lock Pinger) *Service {
	return &Service{engine: engine, lock: lock}
}

// Check pings the engine and, when configured, the shared lock store.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	status := Healthy
	if err := s.engine.Ping(ctx); err != nil {
		checks["engine"] = CheckError
		status = Unhealthy
	} else {
		checks["engine"] = CheckOK
	}

	if s.lock != nil {
		if err := s.lock.Ping(ctx); err != nil {
			checks["lock"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["lock"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
