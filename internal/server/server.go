package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Counter reports the number of known users for the status endpoint.
// Implemented by session.Store.
type Counter interface {
	Count() int
}

// Server is the bot's HTTP front: the webhook, the registration surface and
// the operator endpoints all mount on its router.
type Server struct {
	cfg        Config
	sessions   Counter
	log        *zap.Logger
	router     chi.Router
	httpServer *http.Server
	startedAt  time.Time
}

// New creates the HTTP server shell. Feature packages register their routes
// through Router.
func New(cfg Config, sessions Counter, log *zap.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		sessions:  sessions,
		log:       log,
		startedAt: time.Now(),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with the base routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", s.handleStatus)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		})
	})

	// Feature routes (webhook, registration, activity) are registered by
	// their packages via Router.

	return r
}

// handleStatus is the human-checkable landing endpoint.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":    "KAIZ Bot",
		"status":  "running",
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
		"version": "2.0.0",
		"features": []string{
			"ai_chat", "spotify_download", "tiktok_download",
			"instagram_download", "tiktok_search", "wiki_search",
			"image_analysis", "background_removal",
		},
	}
	if s.sessions != nil {
		status["users"] = s.sessions.Count()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Config returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("server listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
