package clarification

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers clarification session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/clarification/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/answers", h.SubmitAnswer)
		r.Post("/{id}/complete", h.CompleteSession)
		r.Delete("/{id}", h.AbandonSession)
	})
}

// RegisterStreamRoutes registers the SSE endpoint. It is registered
// separately so the request timeout middleware does not cut long-lived
// streams short.
func RegisterStreamRoutes(r chi.Router, h *Handler) {
	r.Get("/clarification/sessions/{id}/stream", h.StreamQuestions)
}
