// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain vocabulary shared across layers: page
// statuses and audiences, the polymorphic block payloads, media types and
// event log levels.
package model

// Page statuses
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
)

// ValidPageStatuses contains all valid page statuses.
var ValidPageStatuses = []string{PageStatusDraft, PageStatusPublished}

// Page audiences. Audience is display-only and never gates access.
const (
	AudienceJunior    = "junior"
	AudienceUndergrad = "undergrad"
	AudienceGeneral   = "general"
)

// ValidAudiences contains all valid page audiences.
var ValidAudiences = []string{AudienceJunior, AudienceUndergrad, AudienceGeneral}

// IsValidPageStatus reports whether s is a known page status.
func IsValidPageStatus(s string) bool {
	return contains(ValidPageStatuses, s)
}

// IsValidAudience reports whether a is a known audience.
func IsValidAudience(a string) bool {
	return contains(ValidAudiences, a)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
