// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const pageColumns = `id, title, slug, audience, status, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Audience, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) queryPages(ctx context.Context, query string, args ...any) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createPage = `-- name: CreatePage :one
INSERT INTO pages (title, slug, audience, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + pageColumns

type CreatePageParams struct {
	Title     string
	Slug      string
	Audience  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, createPage,
		arg.Title, arg.Slug, arg.Audience, arg.Status, arg.CreatedAt, arg.UpdatedAt)
	p, err := scanPage(row)
	return p, mapError(err)
}

const getPageByID = `-- name: GetPageByID :one
SELECT ` + pageColumns + ` FROM pages WHERE id = ?`

func (q *Queries) GetPageByID(ctx context.Context, id int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPageByID, id))
}

const getPageBySlug = `-- name: GetPageBySlug :one
SELECT ` + pageColumns + ` FROM pages WHERE slug = ?`

func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPageBySlug, slug))
}

const getPublishedPageBySlug = `-- name: GetPublishedPageBySlug :one
SELECT ` + pageColumns + ` FROM pages WHERE slug = ? AND status = 'published'`

func (q *Queries) GetPublishedPageBySlug(ctx context.Context, slug string) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, getPublishedPageBySlug, slug))
}

const listPages = `-- name: ListPages :many
SELECT ` + pageColumns + ` FROM pages ORDER BY updated_at DESC, id DESC`

// ListPages returns every page, most recently updated first.
func (q *Queries) ListPages(ctx context.Context) ([]Page, error) {
	return q.queryPages(ctx, listPages)
}

const listPagesByStatus = `-- name: ListPagesByStatus :many
SELECT ` + pageColumns + ` FROM pages WHERE status = ? ORDER BY updated_at DESC, id DESC`

func (q *Queries) ListPagesByStatus(ctx context.Context, status string) ([]Page, error) {
	return q.queryPages(ctx, listPagesByStatus, status)
}

const slugExists = `-- name: SlugExists :one
SELECT EXISTS(SELECT 1 FROM pages WHERE slug = ?)`

func (q *Queries) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, slugExists, slug).Scan(&exists)
	return exists, err
}

const slugExistsExcluding = `-- name: SlugExistsExcluding :one
SELECT EXISTS(SELECT 1 FROM pages WHERE slug = ? AND id != ?)`

type SlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

func (q *Queries) SlugExistsExcluding(ctx context.Context, arg SlugExistsExcludingParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, slugExistsExcluding, arg.Slug, arg.ID).Scan(&exists)
	return exists, err
}

const updatePage = `-- name: UpdatePage :one
UPDATE pages SET title = ?, slug = ?, audience = ?, status = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

type UpdatePageParams struct {
	Title     string
	Slug      string
	Audience  string
	Status    string
	UpdatedAt time.Time
	ID        int64
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, updatePage,
		arg.Title, arg.Slug, arg.Audience, arg.Status, arg.UpdatedAt, arg.ID)
	p, err := scanPage(row)
	return p, mapError(err)
}

const touchPage = `-- name: TouchPage :exec
UPDATE pages SET updated_at = ? WHERE id = ?`

type TouchPageParams struct {
	UpdatedAt time.Time
	ID        int64
}

// TouchPage bumps updated_at after a block change.
func (q *Queries) TouchPage(ctx context.Context, arg TouchPageParams) error {
	_, err := q.db.ExecContext(ctx, touchPage, arg.UpdatedAt, arg.ID)
	return err
}

const deletePage = `-- name: DeletePage :execrows
DELETE FROM pages WHERE id = ?`

// DeletePage removes a page; its blocks go with it through ON DELETE CASCADE.
func (q *Queries) DeletePage(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePage, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
