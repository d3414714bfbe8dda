// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const blockColumns = `id, page_id, type, data, position, created_at, updated_at`

func scanBlock(row interface{ Scan(...any) error }) (Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.PageID, &b.Type, &b.Data, &b.Position, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const createBlock = `-- name: CreateBlock :one
INSERT INTO blocks (page_id, type, data, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + blockColumns

type CreateBlockParams struct {
	PageID    int64
	Type      string
	Data      string
	Position  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateBlock(ctx context.Context, arg CreateBlockParams) (Block, error) {
	row := q.db.QueryRowContext(ctx, createBlock,
		arg.PageID, arg.Type, arg.Data, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	b, err := scanBlock(row)
	return b, mapError(err)
}

const getBlockByID = `-- name: GetBlockByID :one
SELECT ` + blockColumns + ` FROM blocks WHERE id = ?`

func (q *Queries) GetBlockByID(ctx context.Context, id int64) (Block, error) {
	return scanBlock(q.db.QueryRowContext(ctx, getBlockByID, id))
}

const listBlocksByPage = `-- name: ListBlocksByPage :many
SELECT ` + blockColumns + ` FROM blocks WHERE page_id = ? ORDER BY position, id`

// ListBlocksByPage returns the blocks of a page in display order.
func (q *Queries) ListBlocksByPage(ctx context.Context, pageID int64) ([]Block, error) {
	rows, err := q.db.QueryContext(ctx, listBlocksByPage, pageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const countBlocksByPage = `-- name: CountBlocksByPage :one
SELECT COUNT(*) FROM blocks WHERE page_id = ?`

func (q *Queries) CountBlocksByPage(ctx context.Context, pageID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countBlocksByPage, pageID).Scan(&count)
	return count, err
}

const updateBlockData = `-- name: UpdateBlockData :one
UPDATE blocks SET data = ?, updated_at = ? WHERE id = ?
RETURNING ` + blockColumns

type UpdateBlockDataParams struct {
	Data      string
	UpdatedAt time.Time
	ID        int64
}

func (q *Queries) UpdateBlockData(ctx context.Context, arg UpdateBlockDataParams) (Block, error) {
	return scanBlock(q.db.QueryRowContext(ctx, updateBlockData, arg.Data, arg.UpdatedAt, arg.ID))
}

const updateBlockPosition = `-- name: UpdateBlockPosition :exec
UPDATE blocks SET position = ?, updated_at = ? WHERE id = ?`

type UpdateBlockPositionParams struct {
	Position  int64
	UpdatedAt time.Time
	ID        int64
}

func (q *Queries) UpdateBlockPosition(ctx context.Context, arg UpdateBlockPositionParams) error {
	_, err := q.db.ExecContext(ctx, updateBlockPosition, arg.Position, arg.UpdatedAt, arg.ID)
	return mapError(err)
}

const deleteBlock = `-- name: DeleteBlock :execrows
DELETE FROM blocks WHERE id = ?`

func (q *Queries) DeleteBlock(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBlock, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
