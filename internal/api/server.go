// Copyright (c) 2026 Parcelia. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/parcelia/backoffice/internal/auth"
	"github.com/parcelia/backoffice/internal/core/bon"
	"github.com/parcelia/backoffice/internal/core/client"
	"github.com/parcelia/backoffice/internal/core/colis"
	"github.com/parcelia/backoffice/internal/core/company"
	"github.com/parcelia/backoffice/internal/core/notification"
	"github.com/parcelia/backoffice/internal/core/status"
	"github.com/parcelia/backoffice/internal/platform/config"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles staff authentication (login, refresh, session, events).
	Auth *auth.Handler

	// Account handles staff account administration.
	Account *auth.AccountHandler

	// Colis handles parcels, their status tracking, and the audit trail.
	Colis *colis.Handler

	// Client manages the sender directory.
	Client *client.Handler

	// Company manages partner companies.
	Company *company.Handler

	// Bon manages distribution vouchers and their parcel lists.
	Bon *bon.Handler

	// Status manages the dynamic status catalog.
	Status *status.Handler

	// Notification serves each operator's inbox.
	Notification *notification.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	// The auth event stream is exempt: SSE connections live until the
	// client disconnects.
	r.Use(middleware.TimeoutExcept(constants.GlobalRequestTimeout, "/api/v1/auth/events"))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/users", h.Account.Routes())
		api.Mount("/colis", h.Colis.Routes())
		api.Mount("/clients", h.Client.Routes())
		api.Mount("/companies", h.Company.Routes())
		api.Mount("/bons", h.Bon.Routes())
		api.Mount("/statuses", h.Status.Routes())
		api.Mount("/notifications", h.Notification.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
