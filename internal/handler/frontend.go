// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/render"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
)

// FrontendHandler serves published pages to visitors.
type FrontendHandler struct {
	pages    *service.PageService
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(pages *service.PageService, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{pages: pages, renderer: renderer}
}

// Index handles GET /, listing published pages most recently updated first.
func (h *FrontendHandler) Index(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.ListPublished(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	views := make([]render.PageView, 0, len(pages))
	for _, p := range pages {
		views = append(views, pageView(p, nil))
	}
	h.render(w, r, http.StatusOK, "public/index", render.TemplateData{Data: views})
}

// Page handles GET /p/{slug}. Drafts are not found for visitors.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, service.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	view := pageView(page.Page, page.Blocks)
	h.render(w, r, http.StatusOK, "public/page", render.TemplateData{Title: view.Title, Data: view})
}

// NotFound renders the public 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "public/not_found", render.TemplateData{Title: "Page not found"})
}

// APIList handles GET /api/pages.
func (h *FrontendHandler) APIList(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.ListPublished(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pages)
}

// APIPage handles GET /api/pages/{slug}.
func (h *FrontendHandler) APIPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func pageView(p store.Page, blocks []service.Block) render.PageView {
	view := render.PageView{
		Title:     p.Title,
		Slug:      p.Slug,
		Audience:  p.Audience,
		UpdatedAt: p.UpdatedAt,
		Blocks:    make([]render.BlockView, 0, len(blocks)),
	}
	for _, b := range blocks {
		view.Blocks = append(view.Blocks, render.NewBlockView(b.Payload))
	}
	return view
}

func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := h.renderer.Render(w, status, name, data); err != nil {
		h.serverError(w, r, err)
	}
}

func (h *FrontendHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("failed to render public page", "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
