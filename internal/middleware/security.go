// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	// ContentSecurityPolicy is the CSP header value.
	ContentSecurityPolicy string

	// HSTSMaxAge is the max-age for Strict-Transport-Security in seconds; 0 disables HSTS.
	HSTSMaxAge int

	// HSTSIncludeSubDomains includes subdomains in HSTS policy.
	HSTSIncludeSubDomains bool

	// FrameOptions controls the X-Frame-Options header.
	FrameOptions string

	// ReferrerPolicy controls the Referrer-Policy header.
	ReferrerPolicy string

	// PermissionsPolicy controls the Permissions-Policy header.
	PermissionsPolicy string
}

// cspOrder fixes the directive order so the header is stable.
var cspOrder = []string{
	"default-src", "script-src", "style-src", "img-src", "media-src", "font-src",
	"connect-src", "frame-src", "object-src", "base-uri", "form-action",
}

// DefaultSecurityHeadersConfig allows the page renderer's YouTube embeds
// and media served from any https origin (a bucket public URL).
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	cfg := SecurityHeadersConfig{
		IsDevelopment:  isDev,
		HSTSMaxAge:     31536000,
		FrameOptions:   "SAMEORIGIN",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		ContentSecurityPolicy: buildCSP(map[string]string{
			"default-src": "'self'",
			"script-src":  "'self'",
			"style-src":   "'self' 'unsafe-inline'",
			"img-src":     "'self' data: https:",
			"media-src":   "'self' https:",
			"font-src":    "'self' data:",
			"connect-src": "'self'",
			"frame-src":   "https://www.youtube-nocookie.com https://www.youtube.com",
			"object-src":  "'none'",
			"base-uri":    "'self'",
			"form-action": "'self'",
		}),
		PermissionsPolicy: strings.Join([]string{
			"camera=()", "geolocation=()", "microphone=()", "payment=()", "usb=()",
			"interest-cohort=()", "browsing-topics=()",
		}, ", "),
	}
	if !isDev {
		cfg.HSTSIncludeSubDomains = true
	}
	return cfg
}

// buildCSP joins directives in cspOrder; unknown directives are dropped.
func buildCSP(directives map[string]string) string {
	parts := make([]string, 0, len(directives))
	for _, key := range cspOrder {
		if value, ok := directives[key]; ok {
			parts = append(parts, key+" "+value)
		}
	}
	return strings.Join(parts, "; ")
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	var hsts string
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if cfg.FrameOptions != "" {
				h.Set("X-Frame-Options", cfg.FrameOptions)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
