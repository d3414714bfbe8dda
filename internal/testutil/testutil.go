// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/store"
)

// TestDB creates a temporary database with all migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "blockcms-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role and password and returns the
// principal acting as that user.
func CreateUser(t *testing.T, db *sql.DB, username, password, role string) *auth.Principal {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}

	return &auth.Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}
