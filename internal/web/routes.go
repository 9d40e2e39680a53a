package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylemirror/stylemirror/internal/web/handlers"
	"github.com/stylemirror/stylemirror/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	orchestrator := s.newOrchestrator()

	// Create handlers
	sessionsHandler := handlers.NewSessionsHandler(sessionManager, s.registry)
	generateHandler := handlers.NewGenerateHandler(s.config, s.registry, orchestrator)
	critiqueHandler := handlers.NewCritiqueHandler(s.registry, orchestrator)
	voiceHandler := handlers.NewVoiceHandler(s.config, s.registry, generateHandler, critiqueHandler)
	facesHandler := handlers.NewFacesHandler(s.registry, s.deps.Detector)
	configHandler := handlers.NewConfigHandler(s.config)
	eventsHandler := handlers.NewEventsHandler(s.registry)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Session creation issues the cookie, so it runs without auth.
		r.Post("/sessions", sessionsHandler.Create)

		// Config is public so the UI can render before a session exists.
		r.Get("/config", configHandler.Get)

		// All other routes require an authenticated session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			// Session state
			r.Get("/sessions/current", sessionsHandler.Status)
			r.Delete("/sessions/current", sessionsHandler.Delete)
			r.Post("/sessions/current/reset", sessionsHandler.Reset)
			r.Post("/sessions/current/source", sessionsHandler.SetSource)
			r.Delete("/sessions/current/source", sessionsHandler.ClearSource)
			r.Get("/sessions/current/image", sessionsHandler.CurrentImage)

			// Generation and critique
			r.Post("/sessions/current/generate", generateHandler.Generate)
			r.Post("/sessions/current/critique", critiqueHandler.Run)
			r.Get("/sessions/current/critique", critiqueHandler.Get)
			r.Delete("/sessions/current/suggestions/{index}", critiqueHandler.DismissSuggestion)

			// Voice commands
			r.Post("/sessions/current/voice", voiceHandler.Interpret)

			// Face detection on camera frames
			r.Post("/sessions/current/frame", facesHandler.DetectFrame)

			// Lifecycle events
			r.Get("/sessions/current/events", eventsHandler.Stream)

			// Look history (only when storage is configured)
			if s.deps.Looks != nil {
				looksHandler := handlers.NewLooksHandler(s.deps.Looks, s.deps.Embedder)
				r.Get("/looks", looksHandler.List)
				r.Get("/looks/{id}/image", looksHandler.Image)
				r.Post("/looks/similar", looksHandler.FindSimilar)
			}
		})
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>StyleMirror</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>StyleMirror</h1>
        <p>The styling API is running.</p>
        <p>Health check at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
	})
}
