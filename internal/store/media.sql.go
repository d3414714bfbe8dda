// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const mediaColumns = `id, filename, original_name, mime_type, size, url, created_at`

func scanMedium(row interface{ Scan(...any) error }) (Medium, error) {
	var m Medium
	err := row.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size, &m.Url, &m.CreatedAt)
	return m, err
}

const createMedia = `-- name: CreateMedia :one
INSERT INTO media (filename, original_name, mime_type, size, url, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + mediaColumns

type CreateMediaParams struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Url          string
	CreatedAt    time.Time
}

func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Medium, error) {
	row := q.db.QueryRowContext(ctx, createMedia,
		arg.Filename, arg.OriginalName, arg.MimeType, arg.Size, arg.Url, arg.CreatedAt)
	m, err := scanMedium(row)
	return m, mapError(err)
}

const getMediaByID = `-- name: GetMediaByID :one
SELECT ` + mediaColumns + ` FROM media WHERE id = ?`

func (q *Queries) GetMediaByID(ctx context.Context, id int64) (Medium, error) {
	return scanMedium(q.db.QueryRowContext(ctx, getMediaByID, id))
}

const listMedia = `-- name: ListMedia :many
SELECT ` + mediaColumns + ` FROM media ORDER BY created_at DESC, id DESC`

func (q *Queries) ListMedia(ctx context.Context) ([]Medium, error) {
	rows, err := q.db.QueryContext(ctx, listMedia)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Medium{}
	for rows.Next() {
		m, err := scanMedium(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const deleteMedia = `-- name: DeleteMedia :execrows
DELETE FROM media WHERE id = ?`

func (q *Queries) DeleteMedia(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMedia, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
