// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/service"
)

// PagesHandler serves /admin/pages.
type PagesHandler struct {
	pages *service.PageService
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(pages *service.PageService) *PagesHandler {
	return &PagesHandler{pages: pages}
}

// List handles GET /admin/pages.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.List(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pages)
}

// Create handles POST /admin/pages.
func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}

	page, err := h.pages.Create(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, page)
}

// Get handles GET /admin/pages/{id}. Drafts are included.
func (h *PagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	page, err := h.pages.Get(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

// Update handles PUT /admin/pages/{id}.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var in service.PageInput
	if !decodeJSON(w, r, &in) {
		return
	}

	page, err := h.pages.Update(r.Context(), middleware.GetPrincipal(r), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

// Delete handles DELETE /admin/pages/{id}. Blocks go with the page.
func (h *PagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.pages.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
