// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request hardening.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal holds the *auth.Principal of the signed-in user.
const ContextKeyPrincipal ContextKey = "principal"

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// PrincipalLoader resolves a session's user id to a current identity.
type PrincipalLoader interface {
	Principal(ctx context.Context, id int64) (*auth.Principal, error)
}

// Auth requires a signed-in user. The identity is reloaded from the store
// on every request, so a deleted account loses access immediately: its
// session is destroyed and the request is redirected to the login page.
func Auth(sm *scs.SessionManager, users PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := session.UserID(r.Context(), sm)
			if userID == 0 {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			p, err := users.Principal(r.Context(), userID)
			if err != nil {
				slog.Info("session user no longer available", "user_id", userID, "error", err)
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// GetPrincipal returns the signed-in identity, or nil.
func GetPrincipal(r *http.Request) *auth.Principal {
	p, _ := r.Context().Value(ContextKeyPrincipal).(*auth.Principal)
	return p
}

// Require gates a route on an authorization action. Missing identity
// redirects to the login page; an insufficient role gets 403.
func Require(action auth.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			err := auth.Authorize(p, action)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, auth.ErrUnauthenticated):
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			default:
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", p.ID,
					"user_role", p.Role,
					"required_role", auth.RequiredRole(action),
					"remote_addr", r.RemoteAddr,
				)
				writeError(w, http.StatusForbidden, "forbidden", "Forbidden: insufficient permissions")
			}
		})
	}
}

// writeError writes the JSON error body shared with the handler package.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
