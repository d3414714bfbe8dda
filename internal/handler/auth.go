// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/session"
)

// AuthHandler handles sign-in, sign-out and the caller's own account.
type AuthHandler struct {
	sessionManager  *scs.SessionManager
	users           *service.UserService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(sm *scs.SessionManager, users *service.UserService, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		sessionManager:  sm,
		users:           users,
		loginProtection: lp,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginInfo handles GET /login, the target of unauthenticated redirects.
func (h *AuthHandler) LoginInfo(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, "unauthorized", "Sign in with POST /login (username, password)", nil)
}

// Login handles POST /login with a JSON or form body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if isJSON(r) {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid form data", nil)
			return
		}
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}
	username := strings.TrimSpace(req.Username)

	if username == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Username and password are required", nil)
		return
	}

	clientIP := middleware.GetClientIP(r)

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			slog.Warn("login attempt on locked account", "username", username, "ip", clientIP)
			writeError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Account temporarily locked. Try again in %s", formatDuration(remaining)), nil)
			return
		}
	}

	p, err := h.users.Authenticate(r.Context(), username, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			writeServiceError(w, r, err)
			return
		}
		slog.Warn("login failed", "username", username, "ip", clientIP)
		var details map[string]string
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
				writeError(w, http.StatusTooManyRequests, "account_locked",
					fmt.Sprintf("Too many failed attempts. Try again in %s", formatDuration(lockDuration)), nil)
				return
			}
			details = map[string]string{
				"remaining_attempts": strconv.Itoa(h.loginProtection.GetRemainingAttempts(username)),
			}
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", service.ErrInvalidCredentials.Error(), details)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}

	if err := session.Login(r.Context(), h.sessionManager, p); err != nil {
		writeServiceError(w, r, fmt.Errorf("renewing session: %w", err))
		return
	}

	slog.Info("user logged in", "user_id", p.ID, "username", p.Username, "ip", clientIP)
	writeData(w, http.StatusOK, p)
}

// Logout handles POST /logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context(), h.sessionManager)

	if err := session.Logout(r.Context(), h.sessionManager); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	if userID > 0 {
		slog.Info("user logged out", "user_id", userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /admin/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, middleware.GetPrincipal(r))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles PUT /admin/me/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), middleware.GetPrincipal(r), req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// formatDuration rounds d up to whole minutes for display.
func formatDuration(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
