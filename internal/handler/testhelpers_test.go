// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/render"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/session"
	"github.com/olegiv/blockcms/internal/storage"
	"github.com/olegiv/blockcms/internal/testutil"
	"github.com/olegiv/blockcms/web"
)

const (
	testPassword  = "correct-horse-battery"
	testMaxUpload = 1 << 20
)

type testApp struct {
	srv    *httptest.Server
	db     *sql.DB
	admin  *auth.Principal
	editor *auth.Principal
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.TestDB(t)

	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates})
	require.NoError(t, err)

	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{IPRateLimit: 1000, IPBurst: 1000})
	t.Cleanup(lp.Close)

	router := NewRouter(RouterConfig{
		DB:              db,
		SessionManager:  session.New(db, true),
		Renderer:        renderer,
		LoginProtection: lp,
		Users:           service.NewUserService(db),
		Pages:           service.NewPageService(db),
		Blocks:          service.NewBlockService(db),
		Media:           service.NewMediaService(db, files, testMaxUpload),
		Events:          service.NewEventService(db),
		SessionSecret:   []byte("test-Secret-key-32-bytes-long!!!"),
		MaxUploadBytes:  testMaxUpload,
		IsDevelopment:   true,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{
		srv:    srv,
		db:     db,
		admin:  testutil.CreateUser(t, db, "admin", testPassword, auth.RoleAdmin),
		editor: testutil.CreateUser(t, db, "editor", testPassword, auth.RoleEditor),
	}
}

// client returns an anonymous client that keeps cookies and does not
// follow redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login returns a client signed in as username.
func (a *testApp) login(t *testing.T, username string) *http.Client {
	t.Helper()
	c := a.client(t)
	resp := a.do(t, c, http.MethodPost, "/login", map[string]string{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, readBody(t, resp))
	return c
}

func (a *testApp) do(t *testing.T, c *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// decodeData unwraps the {"data": ...} envelope.
func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data
}

func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	var env struct {
		Error ErrorDetail `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Error
}

type pageJSON struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Slug     string      `json:"slug"`
	Audience string      `json:"audience"`
	Status   string      `json:"status"`
	Blocks   []blockJSON `json:"blocks"`
}

type blockJSON struct {
	ID       int64          `json:"id"`
	PageID   int64          `json:"page_id"`
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Position int64          `json:"position"`
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
