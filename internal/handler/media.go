// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/storage"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart framing and other form fields.
const multipartOverhead = 1 << 20

// MediaHandler serves the media library and uploaded files.
type MediaHandler struct {
	media    *service.MediaService
	maxBytes int64
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(media *service.MediaService, maxBytes int64) *MediaHandler {
	return &MediaHandler{media: media, maxBytes: maxBytes}
}

// List handles GET /admin/media, newest first.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

// Upload handles POST /admin/media with a multipart "file" field.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("File exceeds the %d MB limit", h.maxBytes>>20), nil)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed",
			map[string]string{"file": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	m, err := h.media.Upload(r.Context(), middleware.GetPrincipal(r), service.Upload{
		Reader:   file,
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

// Delete handles DELETE /admin/media/{id}.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.media.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Serve handles GET /uploads/{name}, streaming a stored file.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !storage.ValidFilename(name) {
		http.NotFound(w, r)
		return
	}

	rc, err := h.media.Open(r.Context(), name)
	if errors.Is(err, service.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to open upload", "filename", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", model.MimeTypeFromExtension(name))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Debug("upload stream interrupted", "filename", name, "error", err)
	}
}
