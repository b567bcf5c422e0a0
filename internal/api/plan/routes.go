package plan

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers plan routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/plans", func(r chi.Router) {
		r.Post("/", h.CreatePlan)
		r.Get("/", h.ListPlans)
		r.Get("/{id}", h.GetPlan)
		r.Put("/{id}", h.UpdatePlan)
		r.Patch("/{id}", h.UpdatePlan)
		r.Delete("/{id}", h.DeletePlan)
		r.Get("/{id}/export", h.ExportPlan)
	})
}
