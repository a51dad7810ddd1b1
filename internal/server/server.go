// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (the seeding tool wires the same lower layers)
// - Clean (main.go stays minimal — just "load config, start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go creates config + logger → passed to Server
// Server.New() creates: sqlite.DB → TokenService/PasswordService →
// AuthService/URLService → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place, rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yutosuda/url-shortener/internal/auth"
	"github.com/yutosuda/url-shortener/internal/config"
	"github.com/yutosuda/url-shortener/internal/handler"
	"github.com/yutosuda/url-shortener/internal/middleware"
	sqliteRepo "github.com/yutosuda/url-shortener/internal/repository/sqlite"
	"github.com/yutosuda/url-shortener/internal/service"
	"github.com/yutosuda/url-shortener/internal/shortcode"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. When the server shuts down it
// must close this connection to flush the WAL and release the file lock;
// Start() handles that during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with every layer wired.
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
// The handler never touches the database directly; the service never
// touches HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath, shortcode.New(cfg.ShortCodeLength))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // clean up the DB if wiring fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /auth/login        → exchange credentials for a token (public)
// GET    /auth/me           → current user                     (auth)
// POST   /urls              → shorten a URL                    (auth)
// GET    /urls              → list URLs                        (auth)
// DELETE /urls/{id}         → delete URL + click history       (auth)
// GET    /urls/{id}/clicks  → click history                    (auth)
// GET    /stats             → aggregate stats                  (auth)
// GET    /r/{short_code}    → redirect                         (public)
// GET    /health            → liveness check                   (public)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers (click records
//    and log lines would otherwise show the proxy's address)
// 3. Logger — logs each request with timing info
// 4. Recoverer — catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.cfg.BcryptCost)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	urlService := service.NewURLService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger, s.cfg.Debug)
	urlHandler := handler.NewURLHandler(urlService, s.cfg.BaseURL, s.logger, s.cfg.Debug)
	redirectHandler := handler.NewRedirectHandler(urlService, s.db, s.logger, s.cfg.Debug)

	// === Public Routes ===
	s.router.Post("/auth/login", authHandler.HandleLogin)
	s.router.Get("/r/{short_code}", redirectHandler.HandleRedirect)
	s.router.Get("/health", redirectHandler.HandleHealth)

	// === Protected Routes ===
	// Everything in this group passes through RequireAuth, which resolves
	// the bearer token to a user before the handler runs.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(authService))

		r.Get("/auth/me", authHandler.HandleMe)
		r.Post("/urls", urlHandler.HandleCreate)
		r.Get("/urls", urlHandler.HandleList)
		r.Delete("/urls/{id}", urlHandler.HandleDelete)
		r.Get("/urls/{id}/clicks", urlHandler.HandleClicks)
		r.Get("/stats", urlHandler.HandleStats)
	})

	return nil
}

// Router exposes the configured mux, mainly for tests that want to drive
// the full stack through httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("base_url", s.cfg.BaseURL),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
	}

	return nil
}
