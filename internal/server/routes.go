package server

import "github.com/go-chi/chi/v5"

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	s.router.Get("/health", s.healthHandler)
	s.router.Get("/version", versionHandler)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/rate-limits", s.rateLimitsHandler)
		r.Get("/reports", s.reportsHandler)
	})
}
