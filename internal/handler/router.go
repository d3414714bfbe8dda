// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/render"
	"github.com/olegiv/blockcms/internal/service"
)

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	DB              *sql.DB
	SessionManager  *scs.SessionManager
	Renderer        *render.Renderer
	StaticFS        fs.FS
	LoginProtection *middleware.LoginProtection

	Users  *service.UserService
	Pages  *service.PageService
	Blocks *service.BlockService
	Media  *service.MediaService
	Events *service.EventService

	SessionSecret  []byte
	MaxUploadBytes int64
	IsDevelopment  bool
	RequestLogging bool
	Version        string
}

// NewRouter builds the chi router for the public site and the admin API.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.SessionManager, cfg.Users, cfg.LoginProtection)
	pagesHandler := NewPagesHandler(cfg.Pages)
	blocksHandler := NewBlocksHandler(cfg.Blocks)
	mediaHandler := NewMediaHandler(cfg.Media, cfg.MaxUploadBytes)
	usersHandler := NewUsersHandler(cfg.Users)
	eventsHandler := NewEventsHandler(cfg.Events)
	frontendHandler := NewFrontendHandler(cfg.Pages, cfg.Renderer)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Version)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(cfg.SessionSecret, cfg.IsDevelopment))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.RequestLogging {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	r.Get(RouteHealth, healthHandler.Health)
	if cfg.StaticFS != nil {
		r.Handle(RouteStatic, http.StripPrefix("/static/", http.FileServerFS(cfg.StaticFS)))
	}
	r.Get(RouteUploads, mediaHandler.Serve)

	// Everything below reads or writes the session.
	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionManager.LoadAndSave)

		r.Get(RouteRoot, frontendHandler.Index)
		r.Get(RoutePublic, frontendHandler.Page)
		r.Route(RouteAPI, func(r chi.Router) {
			r.Get("/", frontendHandler.APIList)
			r.Get(RouteParamSlug, frontendHandler.APIPage)
		})

		r.Group(func(r chi.Router) {
			r.Use(csrfMiddleware)
			r.Get(RouteLogin, authHandler.LoginInfo)
			if cfg.LoginProtection != nil {
				r.With(cfg.LoginProtection.Middleware()).Post(RouteLogin, authHandler.Login)
			} else {
				r.Post(RouteLogin, authHandler.Login)
			}
			r.Post(RouteLogout, authHandler.Logout)
		})

		r.Route(RouteAdmin, func(r chi.Router) {
			r.Use(csrfMiddleware)
			r.Use(middleware.Auth(cfg.SessionManager, cfg.Users))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(auth.ActionOwnAccount))
				r.Get(RouteMe, authHandler.Me)
				r.Put(RoutePassword, authHandler.ChangePassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(auth.ActionEditContent))
				r.Get(RoutePages, pagesHandler.List)
				r.Post(RoutePages, pagesHandler.Create)
				r.Get(RoutePages+RouteParamID, pagesHandler.Get)
				r.Put(RoutePages+RouteParamID, pagesHandler.Update)
				r.Post(RoutePages+RouteParamID+RouteSuffixBlocks, blocksHandler.Add)
				r.Put(RouteBlocks+RouteParamID, blocksHandler.Edit)
				r.Delete(RouteBlocks+RouteParamID, blocksHandler.Delete)
				r.Post(RouteBlocks+RouteParamID+RouteSuffixMove, blocksHandler.Move)
			})

			r.With(middleware.Require(auth.ActionDeletePage)).Delete(RoutePages+RouteParamID, pagesHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(auth.ActionUploadMedia))
				r.Get(RouteMedia, mediaHandler.List)
				r.Post(RouteMedia, mediaHandler.Upload)
			})
			r.With(middleware.Require(auth.ActionDeleteMedia)).Delete(RouteMedia+RouteParamID, mediaHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(auth.ActionManageUsers))
				r.Get(RouteUsers, usersHandler.List)
				r.Post(RouteUsers, usersHandler.Create)
				r.Delete(RouteUsers+RouteParamID, usersHandler.Delete)
			})

			r.With(middleware.Require(auth.ActionViewEvents)).Get(RouteEvents, eventsHandler.List)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, RouteAdmin+"/") || strings.HasPrefix(req.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not_found", "Not found", nil)
			return
		}
		frontendHandler.NotFound(w, req)
	})

	return r
}
