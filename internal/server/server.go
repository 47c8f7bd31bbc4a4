// Package server wires handlers, middleware, and routes into one HTTP
// server. It is the composition root: every dependency chain (database,
// token services, realtime hub, mailer, object store) is assembled here, so
// main.go stays a thin config-reading shell.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/pingme/internal/auth"
	"github.com/sakif/pingme/internal/handler"
	"github.com/sakif/pingme/internal/linktoken"
	"github.com/sakif/pingme/internal/middleware"
	"github.com/sakif/pingme/internal/realtime"
	sqliteRepo "github.com/sakif/pingme/internal/repository/sqlite"
	"github.com/sakif/pingme/internal/service"
)

// Config holds everything the server needs to assemble itself. The optional
// Mailer and Images fields may be nil; the affected features degrade
// gracefully (no verification emails, image data URLs stored as-is).
type Config struct {
	Port      int
	DBPath    string
	StaticDir string // SPA build output; empty disables static serving

	JWTSecret string
	LinkKey   string // base64 AES-256 key for email-verification links

	Mailer service.Mailer
	Images service.ImageStore
}

// Server owns the router, the database connection, and the realtime hub.
// The database is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain. Layering is strict: handlers get
// services, services get repository interfaces, and only this package sees
// the concrete types.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST /api/auth/signup          → create account, send verification email
//	POST /api/auth/login           → check credentials, set session cookie
//	POST /api/auth/logout          → clear session cookie
//	GET  /api/auth/check           → current user (requires auth)
//	POST /api/auth/verify-email    → consume magic link, set session cookie
//	GET  /api/messages/users       → contact list (requires auth)
//	GET  /api/messages/{id}        → conversation history (requires auth)
//	POST /api/messages/send/{id}   → send message (requires auth)
//	PUT  /api/users/profile        → update avatar (requires auth)
//	GET  /ws                       → realtime socket (optional auth)
//	GET  /*                        → SPA static files
//
// The websocket route sits outside the logging middleware: the logger's
// ResponseWriter wrapper would hide http.Hijacker from the upgrade.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	codec, err := linktoken.New(s.config.LinkKey)
	if err != nil {
		return fmt.Errorf("creating link codec: %w", err)
	}
	passwords := auth.NewPasswordService()

	// Realtime plumbing: hub (transport) → registry + presence (state).
	hub := realtime.NewHub(s.logger)
	presence := realtime.NewPresence(realtime.NewRegistry(), hub, s.logger)
	gateway := realtime.NewGateway(hub, presence, s.logger)

	users := s.db.Users()
	messages := s.db.Messages()

	authService := service.NewAuthService(users, tokens, passwords, codec, s.config.Mailer, s.logger)
	chatService := service.NewChatService(users, messages, presence, s.config.Images, s.logger)
	userService := service.NewUserService(users, s.config.Images, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	messageHandler := handler.NewMessageHandler(chatService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Logger(s.logger))

		r.Route("/api", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", authHandler.HandleSignup)
				r.Post("/login", authHandler.HandleLogin)
				r.Post("/logout", authHandler.HandleLogout)
				r.Post("/verify-email", authHandler.HandleVerifyEmail)
				r.With(auth.RequireAuth(tokens)).Get("/check", authHandler.HandleCheck)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Get("/users", messageHandler.HandleContacts)
				r.Get("/{id}", messageHandler.HandleConversation)
				r.Post("/send/{id}", messageHandler.HandleSend)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Put("/profile", userHandler.HandleUpdateProfile)
			})
		})

		if s.config.StaticDir != "" {
			r.Handle("/*", spaFileServer(s.config.StaticDir))
		}
	})

	s.router.With(auth.OptionalAuth(tokens)).Get("/ws", gateway.HandleWS)

	return nil
}

// spaFileServer serves the SPA build directory. Paths that do not match a
// file fall back to index.html so client-side routes like /verify-email
// survive a hard refresh.
func spaFileServer(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path != "" {
			if _, err := os.Stat(filepath.Join(dir, filepath.Clean(path))); err == nil {
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds, close the
// database (flushing the WAL).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket connections.
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
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
