// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/service"
)

// UsersHandler serves /admin/users.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /admin/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.users.Create(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, user)
}

// Delete handles DELETE /admin/users/{id}. Admins cannot delete themselves.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
