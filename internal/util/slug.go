// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers including URL slug
// normalization with transliteration of non-Latin scripts.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// separatorRegex matches whitespace and underscores that become hyphens
	separatorRegex = regexp.MustCompile(`[\s_]+`)
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug.
// Non-Latin text is transliterated to ASCII, accents are dropped, the result
// is lowercased and runs of separators collapse into single hyphens.
// Slugify is idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	// Decompose and strip combining marks before transliteration so that
	// accented Latin letters map to their base letter.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = separatorRegex.ReplaceAllString(result, "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
