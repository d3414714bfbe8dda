// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userJSON struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"password_hash"`
}

func TestUsersAdmin(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "admin")
	editor := app.login(t, "editor")

	resp := app.do(t, editor, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, admin, http.MethodPost, "/admin/users", map[string]string{
		"username": "writer", "password": "long-enough-pw", "role": "editor",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData[userJSON](t, resp)
	assert.Equal(t, "writer", created.Username)
	assert.Empty(t, created.PasswordHash)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantField  string
	}{
		{"duplicate username", map[string]string{"username": "writer", "password": "long-enough-pw", "role": "editor"}, http.StatusConflict, "username"},
		{"unknown role", map[string]string{"username": "x1", "password": "long-enough-pw", "role": "owner"}, http.StatusUnprocessableEntity, "role"},
		{"short password", map[string]string{"username": "x2", "password": "short", "role": "editor"}, http.StatusUnprocessableEntity, "password"},
		{"missing username", map[string]string{"password": "long-enough-pw", "role": "editor"}, http.StatusUnprocessableEntity, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, admin, http.MethodPost, "/admin/users", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, decodeError(t, resp).Details, tt.wantField)
		})
	}

	resp = app.do(t, admin, http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeData[[]userJSON](t, resp), 3)

	resp = app.do(t, admin, http.MethodDelete, "/admin/users/"+itoa(app.admin.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.do(t, editor, http.MethodDelete, "/admin/users/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, admin, http.MethodDelete, "/admin/users/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = app.do(t, admin, http.MethodDelete, "/admin/users/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvents(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "admin")
	editor := app.login(t, "editor")

	resp := app.do(t, editor, http.MethodGet, "/admin/events", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, admin, http.MethodGet, "/admin/events?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.do(t, admin, http.MethodGet, "/admin/events?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
