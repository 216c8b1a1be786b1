package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kyrieos/intelligence-engine/internal/api/middleware"
	"github.com/kyrieos/intelligence-engine/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	RootHandler    http.HandlerFunc
	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	AnalyzeHandler      http.HandlerFunc
	LatestReportHandler http.HandlerFunc
	ListActionsHandler  http.HandlerFunc

	GetJobHandler   http.HandlerFunc
	ListJobsHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Public routes. Job ids are unguessable, so polling needs no secret.
	r.Get("/", orNotImplemented(deps.RootHandler))
	r.Get("/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Get("/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/jobs", orNotImplemented(deps.ListJobsHandler))

		r.Route("/ai/cfo", func(r chi.Router) {
			r.Post("/analyze", orNotImplemented(deps.AnalyzeHandler))
			r.Get("/workspaces/{workspaceID}/latest", orNotImplemented(deps.LatestReportHandler))
			r.Get("/workspaces/{workspaceID}/actions", orNotImplemented(deps.ListActionsHandler))
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
