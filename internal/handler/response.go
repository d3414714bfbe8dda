// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the admin JSON API and the
// public site.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/service"
)

// maxJSONBody limits decoded request bodies.
const maxJSONBody = 1 << 20

// Response is the standard API response wrapper.
type Response struct {
	Data any `json:"data"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeData writes a successful JSON response.
func writeData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// writeError writes an error JSON response.
func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// writeServiceError maps a service error to its HTTP response. Storage
// faults are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *service.ValidationError
		conflict   *service.ConflictError
		blockEdit  *service.BlockEditError
	)
	switch {
	case errors.As(err, &blockEdit):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: blockEdit.Fields,
			Data:    blockEdit.Block,
		}})
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", validation.Fields)
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "conflict", conflict.Message, map[string]string{conflict.Field: conflict.Message})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Not found", nil)
	case errors.Is(err, auth.ErrSelfDeletion):
		writeError(w, http.StatusBadRequest, "bad_request", "You cannot delete your own account", nil)
	case errors.Is(err, auth.ErrUnauthenticated):
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "Forbidden: insufficient permissions", nil)
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("Invalid JSON body: %v", err), nil)
		return false
	}
	return true
}

// isJSON reports whether the request body is JSON rather than a form.
func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// parseIDParam reads a positive integer URL parameter.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}
