package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/insightreporter/internal/api/middleware"
	"github.com/kiranshivaraju/insightreporter/internal/api/response"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	// RequestTimeout bounds every request except briefing dispatch, whose
	// generation stages carry their own deadline. Zero disables it.
	RequestTimeout time.Duration

	HealthHandler    http.HandlerFunc
	DatasetHandler   http.HandlerFunc
	AnalysisHandler  http.HandlerFunc
	DispatchHandler  http.HandlerFunc
	LatestHandler    http.HandlerFunc
	LogsHandler      http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeBriefing))

			r.Post("/api/v1/briefings", orNotImplemented(deps.DispatchHandler))

			r.Group(func(r chi.Router) {
				if deps.RequestTimeout > 0 {
					r.Use(chimw.Timeout(deps.RequestTimeout))
				}
				r.Get("/api/v1/dataset", orNotImplemented(deps.DatasetHandler))
				r.Get("/api/v1/analysis", orNotImplemented(deps.AnalysisHandler))
				r.Get("/api/v1/briefings/latest", orNotImplemented(deps.LatestHandler))
				r.Get("/api/v1/sessions/{sessionID}/logs", orNotImplemented(deps.LogsHandler))
			})
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
