// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"path/filepath"
	"strings"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
	MimeTypeMP4  = "video/mp4"
	MimeTypeWebM = "video/webm"
)

// IsImageMimeType returns true if the MIME type is a supported image.
func IsImageMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// IsVideoMimeType returns true if the MIME type is a supported video.
func IsVideoMimeType(mimeType string) bool {
	return mimeType == MimeTypeMP4 || mimeType == MimeTypeWebM
}

// IsSupportedMimeType checks if a MIME type may be uploaded.
func IsSupportedMimeType(mimeType string) bool {
	return IsImageMimeType(mimeType) || IsVideoMimeType(mimeType) || mimeType == MimeTypePDF
}

// MimeTypeFromExtension guesses a MIME type from a filename extension.
func MimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return MimeTypeJPEG
	case ".png":
		return MimeTypePNG
	case ".gif":
		return MimeTypeGIF
	case ".webp":
		return MimeTypeWebP
	case ".pdf":
		return MimeTypePDF
	case ".mp4":
		return MimeTypeMP4
	case ".webm":
		return MimeTypeWebM
	default:
		return "application/octet-stream"
	}
}
