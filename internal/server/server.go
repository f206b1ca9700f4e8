package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/newsloom/newsloom/internal/observability"
	servermw "github.com/newsloom/newsloom/internal/server/middleware"
	"github.com/newsloom/newsloom/internal/store"
)

// Server represents the HTTP server exposing run state and rate limit
// observability.
type Server struct {
	router *chi.Mux
	server *http.Server
	host   string
	port   int
	store  *store.Store
}

// New creates a new HTTP server instance.
func New(host string, port int, db *store.Store) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		servermw.WriteError(w, req, http.StatusNotFound,
			"NOT_FOUND", "The requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		servermw.WriteError(w, req, http.StatusMethodNotAllowed,
			"METHOD_NOT_ALLOWED", "The requested method is not allowed for this resource")
	})

	s := &Server{
		router: r,
		host:   host,
		port:   port,
		store:  db,
	}

	s.registerRoutes()
	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Starting HTTP server",
			zap.String("host", s.host),
			zap.Int("port", s.port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Shutting down HTTP server")
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing.
func (s *Server) Port() int {
	return s.port
}
