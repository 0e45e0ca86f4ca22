package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/insightreporter/internal/api/response"
)

// Pinger is any dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health. Each
// named dependency is pinged; any failure yields 503 DEGRADED.
func NewHealthHandler(deps map[string]Pinger, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(deps))
		degraded := false
		for name, p := range deps {
			if err := p.Ping(r.Context()); err != nil {
				checks[name] = "degraded"
				degraded = true
				continue
			}
			checks[name] = "ok"
		}

		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":      "ok",
			"services":    checks,
			"ai_provider": provider,
		})
	}
}
