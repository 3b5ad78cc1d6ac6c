// Package server hosts the local admin form: a thin HTTP wrapper around the
// page-generation pipeline for single-user use on localhost.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"giftfinder/internal/config"
	"giftfinder/internal/logger"
)

// Server represents the admin HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	publisher  Publisher
	cfg        *config.Config
	log        zerolog.Logger
}

// New creates the admin server around a publisher.
func New(publisher Publisher, cfg *config.Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		publisher: publisher,
		cfg:       cfg,
		log:       logger.Get(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Get("/", s.handleForm)
	s.router.Post("/", s.handleSubmit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
	}

	return s
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("admin server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("admin server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
