// Package main is the entry point for the chat server.
//
// Its only job is to read configuration from the environment, build the
// optional integrations (SMTP mailer, S3 object store), and hand everything
// to internal/server. All actual logic lives in the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/pingme/internal/mailer"
	"github.com/sakif/pingme/internal/server"
	"github.com/sakif/pingme/internal/service"
	"github.com/sakif/pingme/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides the default for deployments, e.g.
	// DB_PATH=/var/lib/pingme/prod.db
	dbPath := "data/pingme.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The SPA build output. Empty disables static serving, for running the
	// API behind a separate frontend dev server.
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		if _, err := os.Stat("web/dist"); err == nil {
			staticDir, _ = filepath.Abs("web/dist")
		}
	}

	// Both secrets are required: sessions cannot be signed and verification
	// links cannot be minted without them.
	//   JWT_SECRET=$(openssl rand -hex 32)
	//   LINK_ID_ENCODING_KEY=$(openssl rand -base64 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	linkKey := os.Getenv("LINK_ID_ENCODING_KEY")
	if linkKey == "" {
		logger.Error("LINK_ID_ENCODING_KEY is required")
		os.Exit(1)
	}

	// SMTP is optional. Without it, accounts are created but verification
	// emails are skipped (users can still log in with their password).
	var mailSender service.Mailer
	if smtpHost := os.Getenv("SMTP_HOST"); smtpHost != "" {
		baseURL := os.Getenv("BASE_URL")
		if baseURL == "" {
			logger.Error("BASE_URL is required when SMTP_HOST is set")
			os.Exit(1)
		}
		m, err := mailer.New(mailer.Config{
			Host:     smtpHost,
			Port:     envOr("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     envOr("SMTP_FROM", `"The PingMe App" <noreply@pingme.app>`),
			BaseURL:  baseURL,
		})
		if err != nil {
			logger.Error("failed to create mailer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		mailSender = m
	} else {
		logger.Warn("SMTP_HOST not set, verification emails are disabled")
	}

	// Object storage is optional. Without it, avatars and message images are
	// stored as data URLs directly in the database.
	var images service.ImageStore
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		st, err := storage.New(context.Background(), storage.Config{
			Region:        envOr("S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Bucket:        bucket,
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		})
		if err != nil {
			logger.Error("failed to create object store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		images = st
	} else {
		logger.Warn("S3_BUCKET not set, images are stored inline as data URLs")
	}

	cfg := server.Config{
		Port:      port,
		DBPath:    dbPath,
		StaticDir: staticDir,
		JWTSecret: jwtSecret,
		LinkKey:   linkKey,
		Mailer:    mailSender,
		Images:    images,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
