// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"BLOCKCMS_DB_PATH" envDefault:"./data/blockcms.db"`
	SessionSecret string `env:"BLOCKCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"BLOCKCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"BLOCKCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"BLOCKCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"BLOCKCMS_LOG_LEVEL" envDefault:"info"`
	SiteName      string `env:"BLOCKCMS_SITE_NAME" envDefault:"BlockCMS"`

	// File storage
	Storage     string `env:"BLOCKCMS_STORAGE" envDefault:"local"`
	UploadsDir  string `env:"BLOCKCMS_UPLOADS_DIR" envDefault:"./uploads"`
	MaxUploadMB int64  `env:"BLOCKCMS_MAX_UPLOAD_MB" envDefault:"20"`

	MinIOEndpoint  string `env:"BLOCKCMS_MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"BLOCKCMS_MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"BLOCKCMS_MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"BLOCKCMS_MINIO_BUCKET" envDefault:"blockcms"`
	MinIOUseSSL    bool   `env:"BLOCKCMS_MINIO_USE_SSL" envDefault:"false"`
	MinIORegion    string `env:"BLOCKCMS_MINIO_REGION"`
	MinIOPublicURL string `env:"BLOCKCMS_MINIO_PUBLIC_URL"` // Base URL objects are served from

	// Bootstrap admin account, created when missing
	AdminUsername string `env:"BLOCKCMS_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"BLOCKCMS_ADMIN_PASSWORD" envDefault:"changeme"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("BLOCKCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("BLOCKCMS_SESSION_SECRET is a known default value and must not be used")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("BLOCKCMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	switch cfg.Storage {
	case StorageLocal:
	case StorageMinIO:
		if cfg.MinIOEndpoint == "" || cfg.MinIOAccessKey == "" || cfg.MinIOSecretKey == "" {
			return nil, errors.New("BLOCKCMS_STORAGE=minio requires BLOCKCMS_MINIO_ENDPOINT, " +
				"BLOCKCMS_MINIO_ACCESS_KEY and BLOCKCMS_MINIO_SECRET_KEY")
		}
	default:
		return nil, fmt.Errorf("unknown BLOCKCMS_STORAGE %q (want %q or %q)", cfg.Storage, StorageLocal, StorageMinIO)
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("BLOCKCMS_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes.
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
