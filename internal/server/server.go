// Package server exposes the expense pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxImageBytes caps receipt image uploads.
const maxImageBytes = 8 << 20

// Server routes HTTP requests to the expense service.
type Server struct {
	service *service.Service
	logger  logging.Logger
	router  chi.Router
}

// New builds a server with its routes registered.
func New(svc *service.Service, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &Server{service: svc, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.With(middleware.RequestSize(maxImageBytes)).Post("/receipts/scan", s.handleScanReceipt)
		r.Get("/transactions/recent", s.handleRecentTransactions)
		r.Put("/transactions/{id}/category", s.handleRecategorize)
		r.Get("/rollups", s.handleRollup)
		r.Get("/categories", s.handleCategories)
	})

	return r
}

// Handler returns the root handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
