// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testCSRFKey, true)
	assert.ElementsMatch(t, []string{"localhost:8080", "127.0.0.1:8080"}, dev.TrustedOrigins)
	for _, origin := range dev.TrustedOrigins {
		assert.False(t, strings.HasPrefix(origin, "http"), "TrustedOrigin %q should be host:port", origin)
	}

	prod := DefaultCSRFConfig(testCSRFKey, false)
	assert.Empty(t, prod.TrustedOrigins)
	assert.Len(t, prod.AuthKey, 32)
}

func TestCSRF(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name         string
		method       string
		secFetchSite string
		wantStatus   int
	}{
		{"safe method cross-site", http.MethodGet, "cross-site", http.StatusOK},
		{"same-origin post", http.MethodPost, "same-origin", http.StatusOK},
		{"non-browser post", http.MethodPost, "", http.StatusOK},
		{"cross-site post", http.MethodPost, "cross-site", http.StatusForbidden},
		{"cross-site delete", http.MethodDelete, "cross-site", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/admin/pages", nil)
			if tt.secFetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.secFetchSite)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
