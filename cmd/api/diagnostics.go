package main

import (
	"context"
	"net/http"
	"time"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	"github.com/ghuser/contractflow/services/contract/domain/repositories"
)

// contractStats and userCounter are the slices of the contract and user
// services the diagnostics endpoint needs.
type contractStats interface {
	Diagnostics(ctx context.Context) (repositories.StoreStats, error)
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DiagnosticsResponse reports store contents and dependency reachability.
type DiagnosticsResponse struct {
	Success      bool                    `json:"success"`
	Contracts    repositories.StoreStats `json:"contracts"`
	Users        int64                   `json:"users"`
	Dependencies map[string]string       `json:"dependencies"`
	Errors       []string                `json:"errors,omitempty"`
} // @name DiagnosticsResponse

// newDiagnosticsHandler probes the stores. Partial failures are reported in
// the body with status 503 rather than aborting the probe.
//
//	@Summary	Diagnostics
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	DiagnosticsResponse
//	@Failure	503	{object}	DiagnosticsResponse
//	@Router		/diagnostics [get]
func newDiagnosticsHandler(contracts contractStats, users userCounter, checks []httpx.HealthCheck, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp := DiagnosticsResponse{Success: true}
		deps, healthy := httpx.Probe(ctx, checks)
		resp.Dependencies = deps

		stats, err := contracts.Diagnostics(ctx)
		if err != nil {
			resp.Errors = append(resp.Errors, "contracts: "+err.Error())
		}
		resp.Contracts = stats

		n, err := users.Count(ctx)
		if err != nil {
			resp.Errors = append(resp.Errors, "users: "+err.Error())
		}
		resp.Users = n

		status := http.StatusOK
		if !healthy || len(resp.Errors) > 0 {
			resp.Success = false
			status = http.StatusServiceUnavailable
			log.WarnContext(r.Context(), "diagnostics degraded", "dependencies", deps, "errors", resp.Errors)
		}
		httpx.JSON(w, status, resp)
	}
}
