// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, startTime: time.Now()}
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health handles GET /health by pinging the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{Status: "ok", Version: h.version, Uptime: time.Since(h.startTime).Round(time.Second).String()}
	code := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		status.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, code, status)
}
