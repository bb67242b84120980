// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency is built and wired here,
// once, from the loaded config.
//
//	config → sqlite.DB ─┬→ IdentityService ─→ AuthHandler
//	         oracle ────┤→ ProjectService ──┐
//	         tokens ────┤→ SessionService ──┴→ ProjectHandler
//	                    └→ RecommendService ─→ RecommendHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/practice-tracker/internal/auth"
	"github.com/sakif/practice-tracker/internal/config"
	"github.com/sakif/practice-tracker/internal/handler"
	"github.com/sakif/practice-tracker/internal/middleware"
	"github.com/sakif/practice-tracker/internal/oracle"
	sqliteRepo "github.com/sakif/practice-tracker/internal/repository/sqlite"
	"github.com/sakif/practice-tracker/internal/service"
)

// Server owns the router and the database connection, which it closes on
// shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every layer.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("configuring tokens (set JWT_SECRET): %w", err)
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(tokens)

	return s, nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET  /health
//	GET  /auth/login                          → identity provider redirect
//	GET  /auth/callback                       → bind identity, set cookie
//	POST /auth/logout
//	GET  /api/me                              → caller's profile
//	POST /api/me/handle                       → register ranking handle
//	GET  /api/me/recommendations?tag=         → around stored tier
//	GET  /api/recommendations?tag=&tier=      → anonymous
//	GET  /api/oracle/users/{handle}           → anonymous profile lookup
//	POST /api/projects, GET /api/projects
//	GET  /api/projects/{projectID}
//	POST /api/projects/{projectID}/sessions, GET same
//
// MIDDLEWARE ORDER:
// RequestID and RealIP first, Recoverer to turn panics into 500s, then
// auth.Attach so Logger can see the caller. Attach never rejects; the
// services call auth.RequireUser.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.Attach(tokens))
	s.router.Use(middleware.Logger(s.logger))

	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL:           s.config.Oracle.BaseURL,
		Timeout:           s.config.Oracle.Timeout,
		MaxTier:           s.config.Oracle.MaxTier,
		RequestsPerSecond: s.config.Oracle.RequestsPerSecond,
		Burst:             s.config.Oracle.Burst,
		Logger:            s.logger,
	})

	identityService := service.NewIdentityService(s.db, tokens, oracleClient, s.config.AllowedEmailDomains, s.logger)
	projectService := service.NewProjectService(s.db, s.logger)
	sessionService := service.NewSessionService(s.db, s.logger)
	recommendService := service.NewRecommendService(s.db, oracleClient, s.logger)

	// A nil provider leaves login answering 503; everything else still works
	// for bearer-token callers.
	var provider handler.IdentityProvider
	if s.config.OAuth.Enabled() {
		provider = auth.NewProvider(auth.ProviderConfig{
			ClientID:     s.config.OAuth.ClientID,
			ClientSecret: s.config.OAuth.ClientSecret,
			RedirectURL:  s.config.OAuth.RedirectURL,
			Tenant:       s.config.OAuth.Tenant,
			UserInfoURL:  s.config.OAuth.UserInfoURL,
		})
	} else {
		s.logger.Warn("OAUTH_CLIENT_ID/OAUTH_CLIENT_SECRET not set, browser login is disabled")
	}

	authHandler := handler.NewAuthHandler(provider, identityService, s.config.JWT.TTL, s.config.CookieSecure, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, sessionService, s.logger)
	recommendHandler := handler.NewRecommendHandler(recommendService, s.logger)

	s.router.Get("/health", handler.HandleHealth(s.db, s.logger))

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/me", authHandler.HandleMe)
		r.Post("/me/handle", authHandler.HandleRegisterHandle)
		r.Get("/me/recommendations", recommendHandler.HandleMyRecommendations)

		r.Get("/recommendations", recommendHandler.HandleRecommend)
		r.Get("/oracle/users/{handle}", recommendHandler.HandleProfile)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.HandleCreate)
			r.Get("/", projectHandler.HandleList)
			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.HandleGet)
				r.Post("/sessions", projectHandler.HandleCreateSession)
				r.Get("/sessions", projectHandler.HandleListSessions)
			})
		})
	})
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("oracle", s.config.Oracle.BaseURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
