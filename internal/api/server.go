// Package api provides the HTTP server and handlers for the gift
// certificate service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Vyacheslaf/giftcert-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store               store.Store
	services            *Services
	router              *chi.Mux
	api                 huma.API
	logger              *slog.Logger
	mutationRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store store.Store, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		store:               store,
		services:            services,
		router:              router,
		logger:              logger,
		mutationRateLimiter: NewRateLimiter(120, time.Minute, 30),
	}
	router.Use(s.rateLimitMutations)

	humaConfig := huma.DefaultConfig("Gift Certificate API", "1.0.0")
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerCertificateRoutes()
	s.registerTagRoutes()
	s.registerUserRoutes()
	s.registerOrderRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
