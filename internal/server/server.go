// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency — database, password
// service, token service, services, handlers — is constructed and wired here
// in one place. Each layer only receives what it needs: services get
// repository interfaces, handlers get services, and nothing below this
// package ever reads configuration.
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
	"github.com/go-playground/validator/v10"

	"github.com/sakif/linklair/internal/auth"
	"github.com/sakif/linklair/internal/config"
	"github.com/sakif/linklair/internal/handler"
	"github.com/sakif/linklair/internal/middleware"
	sqliteRepo "github.com/sakif/linklair/internal/repository/sqlite"
	"github.com/sakif/linklair/internal/service"
	"github.com/sakif/linklair/internal/shortcode"
)

// Server owns the router and the resources that must be released on
// shutdown (currently just the database).
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB ── implements ──▶ repository.{User,Link}Repository
//	PasswordService, TokenService (secret injected from config)
//	AuthService(users, passwords, tokens)   LinkService(links, shortcode)
//	AuthHandler, LinkHandler
//
// Handlers never touch the database; services never touch HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService(auth.DefaultParams(), cfg.HashWorkers)
	codes := shortcode.NewGenerator(shortcode.DefaultLength)
	validate := validator.New()

	authService := service.NewAuthService(db.Users(), passwords, tokens, logger)
	linkService := service.NewLinkService(db.Links(), codes, logger)

	authHandler := handler.NewAuthHandler(authService, validate, logger)
	linkHandler := handler.NewLinkHandler(linkService, cfg.BaseURL, validate, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, authHandler, linkHandler)

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST /api/auth/register       → create account
//	POST /api/auth/login          → issue token
//	POST /api/links               → shorten URL          [bearer token]
//	GET  /api/links               → list caller's links  [bearer token]
//	GET  /{shortCode}             → 301 to original URL
//
// RequireAuth wraps only the owner-scoped group — registration, login, and
// redirects stay public. The guard runs to completion before any wrapped
// handler starts.
func (s *Server) setupRoutes(tokens *auth.TokenService, authHandler *handler.AuthHandler, linkHandler *handler.LinkHandler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/links", linkHandler.HandleCreate)
			r.Get("/links", linkHandler.HandleList)
		})
	})

	// The redirect route matches any single path segment, so it is
	// registered last and never shadows /api.
	s.router.Get("/{shortCode}", linkHandler.HandleRedirect)
}

// Router exposes the handler tree. Used by tests to drive the full stack
// through httptest without opening a socket.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases server-owned resources without serving. Start callers don't
// need this — Start closes the database itself.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// finish, close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr,
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
			slog.String("addr", s.config.Addr),
			slog.String("baseURL", s.config.BaseURL),
			slog.String("database", s.config.DBPath),
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
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
