// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	RouteRoot    = "/"
	RouteLogin   = "/login"
	RouteLogout  = "/logout"
	RouteHealth  = "/health"
	RouteAdmin   = "/admin"
	RouteUploads = "/uploads/{name}"
	RouteStatic  = "/static/*"
	RoutePublic  = "/p/{slug}"
	RouteAPI     = "/api/pages"

	RouteMe       = "/me"
	RoutePassword = "/me/password"
	RoutePages    = "/pages"
	RouteBlocks   = "/blocks"
	RouteMedia    = "/media"
	RouteUsers    = "/users"
	RouteEvents   = "/events"

	RouteParamID      = "/{id}"
	RouteParamSlug    = "/{slug}"
	RouteSuffixBlocks = "/blocks"
	RouteSuffixMove   = "/move"
)
