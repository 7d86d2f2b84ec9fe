/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the planner UI

ROUTE GROUPS:
  /api/workers/*     Roster
  /api/holidays/*    Worker holidays
  /api/projects/*    Projects, assignment completion, apply-dates
  /api/schedule/*    Plans, summaries, preview, backlog
  /api/scenarios/*   Demo scenarios

AUTHENTICATION:
  Read routes are public. Write routes (POST, DELETE) go through
  Authenticator.RequireToken, which is a no-op when no JWT secret is
  configured. Preview is a read despite being a POST: it never touches
  the store.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Bearer token checks
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Auth           *Authenticator
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	protect := opts.Auth.RequireToken

	r.Route("/api", func(r chi.Router) {
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Get("/{id}", h.GetWorker)
			r.With(protect).Post("/", h.CreateWorker)
			r.With(protect).Delete("/{id}", h.DeleteWorker)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.With(protect).Post("/", h.CreateHoliday)
			r.With(protect).Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Get("/{id}", h.GetProject)
			r.With(protect).Post("/", h.CreateProject)
			r.With(protect).Delete("/{id}", h.DeleteProject)
			r.With(protect).Post("/{id}/assignments/{assignmentID}/complete", h.CompleteAssignment)
			r.With(protect).Post("/{id}/apply-dates", h.ApplyDates)
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", h.GetSchedule)
			r.Get("/summary", h.GetScheduleSummary)
			r.Get("/backlog", h.GetBacklog)
			r.Post("/preview", h.PreviewSchedule)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.With(protect).Post("/load", h.LoadScenario)
			r.With(protect).Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
