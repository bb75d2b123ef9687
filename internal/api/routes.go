package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
	"github.com/simplebytes/contact-relay/internal/metrics"
)

const legacyContactPath = "/contact"

// SetupRoutes configures all routes. The contact handler is mounted for
// every method because it answers preflight and 405 itself, with CORS
// headers attached.
func SetupRoutes(cfg *config.Config, contactHandler *contact.Handler, health *HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestContext)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
	}

	r.Get("/health", health.HandleHealth)
	r.Get("/health/live", health.HandleLiveness)

	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	contactPaths := map[string]bool{cfg.Server.ContactPath: true, legacyContactPath: true}
	for path := range contactPaths {
		r.Handle(path, contactHandler)
	}

	// chi rejects methods outside its own table before any route runs.
	// Hand those back to the contact handler so its 405 keeps the JSON
	// body and CORS headers.
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		if contactPaths[req.URL.Path] {
			contactHandler.ServeHTTP(w, req)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	return r
}
