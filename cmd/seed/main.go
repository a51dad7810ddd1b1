// Package main seeds the database with an admin user.
//
// Run once after deployment (or any time — it is idempotent):
//
//	ADMIN_EMAIL=admin@example.com ADMIN_PASSWORD=changeme go run ./cmd/seed
//
// If the user already exists the tool reports it and exits 0, so it is
// safe to run from provisioning scripts on every start.
//
// The tool talks to the repository directly instead of going through
// AuthService: it never issues tokens, and requiring JWT_SECRET just to
// insert a row would make provisioning order-dependent.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/auth"
	"github.com/yutosuda/url-shortener/internal/config"
	"github.com/yutosuda/url-shortener/internal/model"
	sqliteRepo "github.com/yutosuda/url-shortener/internal/repository/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		logger.Error("ADMIN_EMAIL is not a valid email address", slog.String("email", email))
		os.Exit(1)
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		logger.Warn("ADMIN_PASSWORD not set — using the default, change it immediately")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath, nil)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	hash, err := auth.NewPasswordService(cfg.BcryptCost).Hash(password)
	if err != nil {
		logger.Error("failed to hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := db.CreateUser(context.Background(), user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			logger.Info("admin user already exists", slog.String("email", email))
			return
		}
		logger.Error("failed to create admin user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("admin user created",
		slog.Int64("id", user.ID),
		slog.String("email", user.Email),
	)
}
