// Package api exposes the message router over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vocabkeep/vocabkeep/internal/http/response"
	"github.com/vocabkeep/vocabkeep/internal/message"
	"github.com/vocabkeep/vocabkeep/internal/ratelimit"
	"github.com/vocabkeep/vocabkeep/internal/search"
	"github.com/vocabkeep/vocabkeep/internal/store"
)

// Config holds the transport settings.
type Config struct {
	Version            string
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	config   Config
	store    *store.Store
	index    *search.SearchIndex
	messages *message.Router
	limiter  *ratelimit.KeyedRateLimiter
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// index may be nil, in which case health reports search as degraded.
func NewServer(cfg Config, st *store.Store, index *search.SearchIndex, messages *message.Router, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		config:   cfg,
		store:    st,
		index:    index,
		messages: messages,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = ratelimit.New(cfg.RateLimitRPS, max(cfg.RateLimitBurst, 1))
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("vocabkeep API", cfg.Version)
	// Responses are the message envelope; no $schema links.
	humaConfig.CreateHooks = nil
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerMessageRoutes()

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "method not allowed", s.logger)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the rate limiter's background sweeper.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(s.config.CORSAllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
	}

	if s.limiter != nil {
		s.router.Use(rateLimit(s.limiter, s.logger))
	}
}
