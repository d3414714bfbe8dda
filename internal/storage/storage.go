// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage keeps uploaded media files on local disk or in a
// MinIO/S3 bucket behind one interface.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path uploaded files are served under when the
// backend does not have its own public URL.
const URLPrefix = "/uploads/"

// ErrNotFound is returned by Open for a file that does not exist.
var ErrNotFound = errors.New("file not found")

// Stored describes a file written by a backend.
type Stored struct {
	Filename string
	URL      string
	Size     int64
}

// FileStorage stores and removes uploaded files.
type FileStorage interface {
	// Save writes r under a freshly generated name keeping the extension of
	// originalName.
	Save(ctx context.Context, r io.Reader, originalName, mimeType string, size int64) (Stored, error)
	// Open returns the content of a stored file.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, filename string) error
}

// NewFilename returns a collision-free storage name for an upload.
func NewFilename(originalName string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
}

// ValidFilename reports whether name is a bare file name produced by
// NewFilename and safe to join to a directory or object key.
func ValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
