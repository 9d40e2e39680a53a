// Package web wires the HTTP API: router, middleware stack and handlers.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stylemirror/stylemirror/internal/ai"
	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/database"
	"github.com/stylemirror/stylemirror/internal/faces"
	"github.com/stylemirror/stylemirror/internal/stylist"
	"github.com/stylemirror/stylemirror/internal/web/handlers"
	"github.com/stylemirror/stylemirror/internal/web/middleware"
)

// Deps are the external collaborators of the server. Looks and Embedder are
// optional; the API degrades to session-only mode without them.
type Deps struct {
	Stylist     ai.Stylist
	Critic      ai.Critic // nil falls back to Stylist
	Detector    *faces.Detector
	Embedder    handlers.Embedder
	Looks       database.LookStore
	SessionRepo middleware.SessionRepository
}

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
	registry       *handlers.SessionRegistry
	deps           Deps
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, sessionSecret string, deps Deps) *Server {
	r := chi.NewRouter()

	sessionManager := middleware.NewSessionManager(sessionSecret, deps.SessionRepo)

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
		registry:       handlers.NewSessionRegistry(),
		deps:           deps,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes(sessionManager)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	// Stop the session cleanup goroutine
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// newOrchestrator builds the generation orchestrator from the deps.
func (s *Server) newOrchestrator() *stylist.Orchestrator {
	var looks stylist.LookSaver
	if s.deps.Looks != nil {
		looks = handlers.NewLookRecorder(s.deps.Looks, s.deps.Embedder)
	}
	return stylist.NewOrchestrator(s.deps.Stylist, s.deps.Critic, looks)
}
