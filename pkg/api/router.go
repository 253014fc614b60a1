package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routes.
func NewRouter(sessions *SessionsHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1/sessions/{card}/{competency}", func(r chi.Router) {
		r.Put("/", sessions.Open)
		r.Get("/", sessions.Get)
		r.Post("/ignore/{id}", sessions.ToggleIgnore)
		r.Post("/export", sessions.Export)
		r.Delete("/exports", sessions.ResetExports)
		r.Get("/report", sessions.Report)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
