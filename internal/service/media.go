// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/storage"
	"github.com/olegiv/blockcms/internal/store"
)

var errFileDelete = errors.New("deleting media file")

// Upload describes one uploaded file.
type Upload struct {
	Reader   io.Reader
	Filename string
	MimeType string
	Size     int64
}

// MediaService records uploaded files and keeps rows and stored files paired.
type MediaService struct {
	db       *sql.DB
	queries  *store.Queries
	files    storage.FileStorage
	maxBytes int64
}

// NewMediaService creates a new MediaService. Uploads larger than maxBytes
// are rejected.
func NewMediaService(db *sql.DB, files storage.FileStorage, maxBytes int64) *MediaService {
	return &MediaService{db: db, queries: store.New(db), files: files, maxBytes: maxBytes}
}

// Upload stores the file and records it.
func (s *MediaService) Upload(ctx context.Context, p *auth.Principal, u Upload) (store.Medium, error) {
	if err := auth.Authorize(p, auth.ActionUploadMedia); err != nil {
		return store.Medium{}, err
	}

	name := sanitizeFilename(u.Filename)
	mimeType := detectMimeType(u.MimeType, name)
	if !model.IsSupportedMimeType(mimeType) {
		return store.Medium{}, newValidationError("file", fmt.Sprintf("File type %s is not allowed", mimeType))
	}
	if u.Size > s.maxBytes {
		return store.Medium{}, newValidationError("file", fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}

	// One byte past the limit detects a size header that understates the body.
	stored, err := s.files.Save(ctx, io.LimitReader(u.Reader, s.maxBytes+1), name, mimeType, u.Size)
	if err != nil {
		return store.Medium{}, fmt.Errorf("storing file: %w", err)
	}
	if stored.Size > s.maxBytes {
		s.removeFile(ctx, stored.Filename)
		return store.Medium{}, newValidationError("file", fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}
	if stored.Size == 0 {
		s.removeFile(ctx, stored.Filename)
		return store.Medium{}, newValidationError("file", "File is empty")
	}

	medium, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
		Filename:     stored.Filename,
		OriginalName: name,
		MimeType:     mimeType,
		Size:         stored.Size,
		Url:          stored.URL,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.removeFile(ctx, stored.Filename)
		return store.Medium{}, fmt.Errorf("recording media: %w", err)
	}

	slog.Info("media uploaded", "media_id", medium.ID, "filename", medium.Filename, "user", p.Username)
	return medium, nil
}

// List returns all media, newest first.
func (s *MediaService) List(ctx context.Context, p *auth.Principal) ([]store.Medium, error) {
	if err := auth.Authorize(p, auth.ActionUploadMedia); err != nil {
		return nil, err
	}
	items, err := s.queries.ListMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	return items, nil
}

// Delete removes the media row and its stored file as a unit: the row is
// deleted inside a transaction that only commits once the file is gone.
// Admin only.
func (s *MediaService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.Authorize(p, auth.ActionDeleteMedia); err != nil {
		return err
	}

	var filename string
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		m, err := q.GetMediaByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("media", id)
		}
		if err != nil {
			return fmt.Errorf("loading media: %w", err)
		}
		filename = m.Filename

		if _, err := q.DeleteMedia(ctx, id); err != nil {
			return fmt.Errorf("deleting media row: %w", err)
		}

		if err := s.files.Delete(ctx, m.Filename); err != nil {
			return fmt.Errorf("%w: %w", errFileDelete, err)
		}
		return nil
	})
	if errors.Is(err, errFileDelete) {
		slog.Error("media file delete failed, keeping row", "media_id", id, "filename", filename, "error", err)
	}
	if err != nil {
		return err
	}

	slog.Info("media deleted", "media_id", id, "filename", filename, "user", p.Username)
	return nil
}

// Open returns the content of a stored file for serving.
func (s *MediaService) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	rc, err := s.files.Open(ctx, filename)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("file %q: %w", filename, ErrNotFound)
	}
	return rc, err
}

func (s *MediaService) removeFile(ctx context.Context, filename string) {
	if err := s.files.Delete(ctx, filename); err != nil {
		slog.Error("failed to remove orphaned upload", "filename", filename, "error", err)
	}
}

// sanitizeFilename keeps the base name of an upload and drops characters
// that are awkward in URLs and headers.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	if filename == "" || filename == "." || filename == "/" {
		filename = "upload"
	}
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	return filename
}

// detectMimeType prefers the declared type and falls back to the extension
// when the client sent nothing useful.
func detectMimeType(declared, filename string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return strings.ToLower(mt)
	}
	return model.MimeTypeFromExtension(filename)
}
