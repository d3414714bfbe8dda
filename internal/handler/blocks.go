// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/ordering"
	"github.com/olegiv/blockcms/internal/service"
)

// BlocksHandler serves the block routes of the admin API.
type BlocksHandler struct {
	blocks *service.BlockService
}

// NewBlocksHandler creates a new BlocksHandler.
func NewBlocksHandler(blocks *service.BlockService) *BlocksHandler {
	return &BlocksHandler{blocks: blocks}
}

type addBlockRequest struct {
	Type string `json:"type"`
}

// Add handles POST /admin/pages/{id}/blocks. The block is appended with
// the default payload of its type.
func (h *BlocksHandler) Add(w http.ResponseWriter, r *http.Request) {
	pageID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req addBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	block, err := h.blocks.Add(r.Context(), middleware.GetPrincipal(r), pageID, model.BlockType(strings.TrimSpace(req.Type)))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, block)
}

// Edit handles PUT /admin/blocks/{id}. The body is a flat JSON object of
// payload fields. A non-string value is passed on as its JSON text, so a
// quiz may be sent either as a quiz_json string or as an object.
func (h *BlocksHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}

	block, err := h.blocks.Edit(r.Context(), middleware.GetPrincipal(r), id, submittedFields(raw))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, block)
}

func submittedFields(raw map[string]json.RawMessage) model.Fields {
	fields := make(model.Fields, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
			continue
		}
		fields[k] = string(v)
	}
	return fields
}

// Delete handles DELETE /admin/blocks/{id} and returns the renumbered
// blocks of the page.
func (h *BlocksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r)
	pageID, err := h.blocks.Delete(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	blocks, err := h.blocks.List(r.Context(), p, pageID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, blocks)
}

type moveBlockRequest struct {
	Direction string `json:"direction"`
}

// Move handles POST /admin/blocks/{id}/move with direction "up" or "down".
func (h *BlocksHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req moveBlockRequest
	if isJSON(r) {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		req.Direction = r.FormValue("direction")
	}

	dir, err := ordering.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed",
			map[string]string{"direction": ordering.ErrInvalidDirection.Error()})
		return
	}
	blocks, err := h.blocks.Move(r.Context(), middleware.GetPrincipal(r), id, dir)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, blocks)
}
