package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
)

// NewRouter wires the API onto a chi router. Admin routes are only mounted in development.
func NewRouter(api *APIHandlers, development bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", api.Liveness)
	r.Get("/readyz", api.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", api.Health)
		r.Get("/events", api.EventsSSE)

		r.Get("/teams", api.ListTeams)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", api.ListPlayers)
			r.Get("/{id}", api.GetPlayer)
			r.Post("/{id}/comments", api.AddComment)
		})

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", api.StartSimulation)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", api.GetSimulation)
				r.Delete("/", api.DeleteSimulation)
				r.Post("/pick", api.Pick)
				r.Post("/skip", api.Skip)
				r.Get("/result", api.GetResult)
			})
		})

		r.Get("/analytics/adp", api.AverageDraftPositions)

		if development {
			r.Post("/admin/reset", api.Reset)
		}
	})
	return r
}

// requestLogger logs each request except the event stream, which stays open
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if r.URL.Path == "/api/events" {
			return
		}
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
