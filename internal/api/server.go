// Package api wires the contact handler, health probes and metrics into a
// chi router and runs the HTTP server.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
)

// Server represents the relay's HTTP server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	router  *chi.Mux
	health  *HealthChecker
	server  *http.Server
}

// NewServer creates a new server around an already-built contact handler.
func NewServer(cfg *config.Config, contactHandler *contact.Handler, strategyName string) *Server {
	health := NewHealthChecker(cfg, strategyName)
	router := SetupRoutes(cfg, contactHandler, health)

	return &Server{
		config:  cfg.Server,
		handler: router,
		router:  router,
		health:  health,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Submissions are small and the slowest outbound call is bounded
		// by the mail timeout, so tight limits are safe here.
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
