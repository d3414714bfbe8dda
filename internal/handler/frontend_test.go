// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicSite(t *testing.T) {
	app := newTestApp(t)
	c := app.login(t, "editor")
	visitor := app.client(t)

	resp := app.do(t, c, http.MethodPost, "/admin/pages", map[string]string{"title": "Light & Optics", "status": "published", "audience": "junior"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	published := decodeData[pageJSON](t, resp)

	resp = app.do(t, c, http.MethodPost, "/admin/pages/"+itoa(published.ID)+"/blocks", map[string]string{"type": "text"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	block := decodeData[blockJSON](t, resp)
	resp = app.do(t, c, http.MethodPut, "/admin/blocks/"+itoa(block.ID), map[string]string{"heading": "Reflection", "body": "Angles are **equal**."})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.do(t, c, http.MethodPost, "/admin/pages", map[string]string{"title": "Work in progress"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decodeData[pageJSON](t, resp)

	t.Run("index lists published only", func(t *testing.T) {
		resp := app.do(t, visitor, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, `href="/p/`+published.Slug+`"`)
		assert.Contains(t, body, "Light &amp; Optics")
		assert.NotContains(t, body, draft.Slug)
	})

	t.Run("page renders blocks", func(t *testing.T) {
		resp := app.do(t, visitor, http.MethodGet, "/p/"+published.Slug, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
		body := readBody(t, resp)
		assert.Contains(t, body, "Reflection")
		assert.Contains(t, body, "<strong>equal</strong>")
		assert.Contains(t, body, "Junior")
	})

	t.Run("draft is not found", func(t *testing.T) {
		resp := app.do(t, visitor, http.MethodGet, "/p/"+draft.Slug, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = app.do(t, visitor, http.MethodGet, "/api/pages/"+draft.Slug, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("json api", func(t *testing.T) {
		resp := app.do(t, visitor, http.MethodGet, "/api/pages", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		pages := decodeData[[]pageJSON](t, resp)
		require.Len(t, pages, 1)
		assert.Equal(t, published.ID, pages[0].ID)

		resp = app.do(t, visitor, http.MethodGet, "/api/pages/"+published.Slug, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		page := decodeData[pageJSON](t, resp)
		require.Len(t, page.Blocks, 1)
		assert.Equal(t, "Reflection", page.Blocks[0].Data["heading"])
	})

	t.Run("unknown paths", func(t *testing.T) {
		resp := app.do(t, visitor, http.MethodGet, "/nowhere", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

		resp = app.do(t, visitor, http.MethodGet, "/api/nowhere", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not_found", decodeError(t, resp).Code)
	})
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, app.client(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status.Status)

	require.NoError(t, app.db.Close())
	resp = app.do(t, app.client(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
