package api

import (
	"net/http"
	"time"

	clarificationapi "github.com/24thNight/clarify-backend/internal/api/clarification"
	"github.com/24thNight/clarify-backend/internal/api/docs"
	"github.com/24thNight/clarify-backend/internal/api/middleware"
	planapi "github.com/24thNight/clarify-backend/internal/api/plan"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(clarificationHandler *clarificationapi.Handler, planHandler *planapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"healthy"}`))
		})

		docs.RegisterRoutes(r)
		clarificationapi.RegisterRoutes(r, clarificationHandler)
		planapi.RegisterRoutes(r, planHandler)
	})

	// The SSE endpoint stays open for the whole question stream, so it
	// lives outside the timeout group.
	clarificationapi.RegisterStreamRoutes(r, clarificationHandler)

	return r
}
