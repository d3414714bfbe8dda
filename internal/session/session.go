// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session wires the scs session manager to the SQLite store and
// keeps the signed-in principal in the session.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blockcms/internal/auth"
)

// Session keys.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Login renews the session token and records p as the signed-in principal.
func Login(ctx context.Context, sm *scs.SessionManager, p *auth.Principal) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, p.ID)
	sm.Put(ctx, KeyUsername, p.Username)
	sm.Put(ctx, KeyRole, p.Role)
	return nil
}

// Logout destroys the session.
func Logout(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the signed-in user's id, or 0 when nobody is signed in.
func UserID(ctx context.Context, sm *scs.SessionManager) int64 {
	return sm.GetInt64(ctx, KeyUserID)
}
