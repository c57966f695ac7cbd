package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func urlParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// Routes builds the chi router. /health is public; everything under
// /api/v1 requires the bearer API key.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(h.apiKey))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Patch("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Get("/{id}/tasks", h.ListProjectTasks)
			r.Post("/{id}/tasks", h.CreateTask)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/{id}", h.GetTask)
			r.Patch("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
		})

		r.Route("/seeds", func(r chi.Router) {
			r.Get("/", h.ListSeeds)
			r.Post("/", h.CreateSeed)
			r.Get("/{id}", h.GetSeed)
			r.Patch("/{id}", h.UpdateSeed)
			r.Delete("/{id}", h.DeleteSeed)
			r.Post("/{id}/promote", h.PromoteSeed)
		})

		r.Route("/cycles", func(r chi.Router) {
			r.Get("/", h.ListCycles)
			r.Post("/", h.CreateCycle)
			r.Get("/active", h.GetActiveCycle)
			r.Get("/{id}", h.GetCycle)
			r.Patch("/{id}", h.UpdateCycle)
			r.Delete("/{id}", h.DeleteCycle)
		})

		r.Get("/calendar", h.Calendar)
		r.Get("/notifications", h.Notifications)
		r.Post("/undo/{token}", h.Undo)
	})

	return r
}
