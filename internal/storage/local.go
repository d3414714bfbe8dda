// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores files in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Save implements FileStorage.
func (l *Local) Save(_ context.Context, r io.Reader, originalName, _ string, _ int64) (Stored, error) {
	name := NewFilename(originalName)
	path := filepath.Join(l.dir, name)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("creating file: %w", err)
	}

	written, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return Stored{}, fmt.Errorf("writing file: %w", err)
	}

	return Stored{Filename: name, URL: URLPrefix + name, Size: written}, nil
}

// Open implements FileStorage.
func (l *Local) Open(_ context.Context, filename string) (io.ReadCloser, error) {
	if !ValidFilename(filename) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(l.dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete implements FileStorage.
func (l *Local) Delete(_ context.Context, filename string) error {
	if !ValidFilename(filename) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	err := os.Remove(filepath.Join(l.dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}
