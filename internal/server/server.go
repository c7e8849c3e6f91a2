// Package server exposes the analytics engine over HTTP. It is pure
// transport: every handler parses scalars, calls one service and renders the
// result; no analytics happen here.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stayscout/stayscout/internal/dataset"
	"github.com/stayscout/stayscout/internal/modules/forecast"
	"github.com/stayscout/stayscout/internal/modules/pricing"
	"github.com/stayscout/stayscout/internal/modules/recommender"
	"github.com/stayscout/stayscout/internal/modules/risk"
)

// Config holds server configuration and the pre-built engine services
type Config struct {
	Port    int
	Log     zerolog.Logger
	DevMode bool

	Dataset      *dataset.Dataset
	Cancellation *risk.CancellationService
	Overbooking  *risk.OverbookingService
	Pricing      *pricing.Service
	Recommender  *recommender.Service
	Forecast     *forecast.Engine
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	dataset      *dataset.Dataset
	cancellation *risk.CancellationService
	overbooking  *risk.OverbookingService
	pricing      *pricing.Service
	recommender  *recommender.Service
	forecast     *forecast.Engine
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		dataset:      cfg.Dataset,
		cancellation: cfg.Cancellation,
		overbooking:  cfg.Overbooking,
		pricing:      cfg.Pricing,
		recommender:  cfg.Recommender,
		forecast:     cfg.Forecast,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/meta", func(r chi.Router) {
			r.Get("/cities", s.handleMetaCities)
			r.Get("/stats", s.handleMetaStats)
		})

		r.Post("/recommend", s.handleRecommend)

		r.Route("/risk", func(r chi.Router) {
			r.Post("/cancellation", s.handleCancellationRisk)
			r.Post("/overbooking", s.handleOverbookingRisk)
		})

		r.Route("/advice", func(r chi.Router) {
			r.Post("/price_fairness", s.handlePriceFairness)
			r.Post("/best_booking_window", s.handleBestBookingWindow)
		})

		r.Post("/forecast/signal", s.handleForecastSignal)

		r.Get("/system/status", s.handleSystemStatus)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
