// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/service"
)

// EventsHandler serves the event log.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// List handles GET /admin/events?limit=N.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	events, err := h.events.Recent(r.Context(), middleware.GetPrincipal(r), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, events)
}
