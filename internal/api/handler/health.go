package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/kyrieos/intelligence-engine/internal/api/response"
)

// ServiceName and Version are reported by / and /health.
const (
	ServiceName = "intelligence-engine"
	Version     = "1.0.0"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by the store and the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// NewHealthHandler returns an http.HandlerFunc for GET /health. It always
// answers 200; a failed dependency shows up as status "degraded".
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{
			Status:   "healthy",
			Service:  ServiceName,
			Version:  Version,
			Database: connectivity(ctx, db),
			Cache:    connectivity(ctx, cache),
		}
		if resp.Database != "connected" || resp.Cache != "connected" {
			resp.Status = "degraded"
		}
		response.JSON(w, resp)
	}
}

func connectivity(ctx context.Context, p Pinger) string {
	if p == nil || p.Ping(ctx) != nil {
		return "disconnected"
	}
	return "connected"
}

// NewRootHandler returns an http.HandlerFunc for GET /.
func NewRootHandler() http.HandlerFunc {
	info := map[string]any{
		"service": ServiceName,
		"version": Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":  "GET /health",
			"metrics": "GET /metrics",
			"analyze": "POST /ai/cfo/analyze",
			"latest":  "GET /ai/cfo/workspaces/{workspace_id}/latest",
			"actions": "GET /ai/cfo/workspaces/{workspace_id}/actions",
			"jobs":    "GET /jobs",
			"job":     "GET /jobs/{job_id}",
		},
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, info)
	}
}
