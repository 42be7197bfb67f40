package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database, Redis, event bus and blob store all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency probed by the health endpoint.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

// Probe pings every check and returns "ok" or "unreachable" per name, plus
// whether all of them succeeded.
func Probe(ctx context.Context, checks []HealthCheck) (map[string]string, bool) {
	results := make(map[string]string, len(checks))
	healthy := true
	for _, c := range checks {
		if c.Checker == nil {
			continue
		}
		if err := c.Checker.Ping(ctx); err != nil {
			results[c.Name] = "unreachable"
			healthy = false
			continue
		}
		results[c.Name] = "ok"
	}
	return results, healthy
}

// HealthHandler returns an http.HandlerFunc that probes all registered
// checks and reports degraded status if any of them fail.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp, healthy := Probe(ctx, checks)
		resp["status"] = "ok"
		status := http.StatusOK
		if !healthy {
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
