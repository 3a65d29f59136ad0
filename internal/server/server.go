package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the API routes and middleware.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)

		r.Route("/lancamentos", func(r chi.Router) {
			r.Get("/", h.ListByKind)
			r.Post("/", h.CreateEntry)
			r.Post("/reordenar", h.Reorder)
			r.Put("/{id}", h.UpdateEntry)
			r.Patch("/{id}/status", h.UpdateStatus)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/terceiros", func(r chi.Router) {
			r.Get("/", h.ThirdPartyCards)
			r.Get("/nomes", h.ThirdPartyNames)
			r.Post("/ordem", h.SaveCardOrder)
			r.Patch("/{nome}/status", h.SetStatusByPerson)
			r.Delete("/{nome}", h.DeleteByPerson)
		})

		r.Route("/meses", func(r chi.Router) {
			r.Post("/copiar", h.CopyMonth)
			r.Delete("/{year}/{month}", h.DeleteMonth)
		})
	})

	return r
}
