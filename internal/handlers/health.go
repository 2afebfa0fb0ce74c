package handlers

import (
	"context"
	"net/http"
	"time"
)

type check struct {
	name     string
	fn       func(context.Context) error
	critical bool
}

// AddCheck registers a dependency for /api/health. Critical checks also gate /readyz.
func (h *APIHandlers) AddCheck(name string, critical bool, fn func(context.Context) error) {
	h.checks = append(h.checks, check{name: name, fn: fn, critical: critical})
}

func (h *APIHandlers) runChecks(ctx context.Context, criticalOnly bool) (map[string]any, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	healthy := true
	results := make(map[string]any)

	all := append([]check{{name: "database", fn: func(context.Context) error { return h.dal.Ping() }, critical: true}}, h.checks...)
	for _, c := range all {
		if criticalOnly && !c.critical {
			continue
		}
		if err := c.fn(ctx); err != nil {
			healthy = false
			results[c.name] = map[string]any{"status": "unhealthy", "error": err.Error()}
			continue
		}
		results[c.name] = map[string]any{"status": "healthy"}
	}
	return results, healthy
}

// Health reports every registered dependency
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context(), false)

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// Liveness handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func (h *APIHandlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness handles Kubernetes readiness probes
func (h *APIHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context(), true)
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "not_ready",
			"checks":    checks,
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
