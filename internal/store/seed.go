// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
)

// DefaultAdminPassword is the bootstrap password shipped in configuration
// defaults. Seeding with it logs a warning.
const DefaultAdminPassword = "changeme"

// Seed creates the bootstrap admin account when no user with username exists.
// Existing accounts are never modified.
func Seed(ctx context.Context, db *sql.DB, username, password string) error {
	queries := New(db)

	_, err := queries.GetUserByUsername(ctx, username)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "username", username)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         auth.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "username", user.Username)
	if password == DefaultAdminPassword {
		slog.Warn("admin user uses the default password; change it after first login",
			"username", user.Username)
	}

	return nil
}
