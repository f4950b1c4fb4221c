// Package server provides HTTP server management and lifecycle handling for
// the remedy service: middleware, routes and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pri779/Ayurvedic-chatbot/config"
	"github.com/pri779/Ayurvedic-chatbot/interfaces"
	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/metrics"
	"github.com/pri779/Ayurvedic-chatbot/views"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	limiter *RateLimiter
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler, limiter *RateLimiter) *Server {
	if limiter == nil {
		limiter = NewRateLimiter()
	}

	router := chi.NewRouter()

	// PDF rendering can take up to the render timeout
	writeTimeout := 15 * time.Second
	if cfg.PDFTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.PDFTimeout + 5*time.Second
	}

	server := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           cfg.Address + ":" + cfg.Port,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   writeTimeout,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:  router,
		handler: handler,
		limiter: limiter,
		config:  cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware(s.config.TrustedProxies))
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handler.Index)
	s.router.Post("/result", s.handler.Result)
	s.router.Post("/download", s.handler.Download)
	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Handle("/metrics", metrics.Handler())

	static := http.StripPrefix("/static/", http.FileServer(http.FS(views.Static())))
	s.router.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600") // 1 hour
		static.ServeHTTP(w, r)
	})
}

// Router exposes the configured router
func (s *Server) Router() chi.Router {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
