// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/ordering"
	"github.com/olegiv/blockcms/internal/store"
)

// Block is a stored block with its payload decoded.
type Block struct {
	ID        int64           `json:"id"`
	PageID    int64           `json:"page_id"`
	Type      model.BlockType `json:"type"`
	Payload   model.Payload   `json:"data"`
	Position  int64           `json:"position"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func decodeBlock(b store.Block) Block {
	t := model.BlockType(b.Type)
	return Block{
		ID:        b.ID,
		PageID:    b.PageID,
		Type:      t,
		Payload:   model.DecodePayload(t, b.Data),
		Position:  b.Position,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func decodeBlocks(rows []store.Block) []Block {
	blocks := make([]Block, len(rows))
	for i, b := range rows {
		blocks[i] = decodeBlock(b)
	}
	return blocks
}

// BlockEditError is returned by Edit when the submitted fields are rejected.
// Block holds the unchanged stored block for redisplay.
type BlockEditError struct {
	*ValidationError
	Block Block
}

func (e *BlockEditError) Unwrap() error {
	return e.ValidationError
}

// BlockService adds, edits, deletes and reorders the blocks of a page while
// keeping their positions a gapless 1..N sequence.
type BlockService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewBlockService creates a new BlockService.
func NewBlockService(db *sql.DB) *BlockService {
	return &BlockService{db: db, queries: store.New(db)}
}

// List returns the blocks of page pageID in display order.
func (s *BlockService) List(ctx context.Context, p *auth.Principal, pageID int64) ([]Block, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return nil, err
	}
	if _, err := s.queries.GetPageByID(ctx, pageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("page", pageID)
		}
		return nil, fmt.Errorf("loading page: %w", err)
	}
	rows, err := s.queries.ListBlocksByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	return decodeBlocks(rows), nil
}

// Add appends a block of type t with default content to the end of the page.
func (s *BlockService) Add(ctx context.Context, p *auth.Principal, pageID int64, t model.BlockType) (Block, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return Block{}, err
	}
	if !t.Valid() {
		return Block{}, newValidationError("type", fmt.Sprintf("Unknown block type %q", t))
	}

	data, err := model.EncodePayload(model.DefaultPayload(t))
	if err != nil {
		return Block{}, err
	}

	var created store.Block
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if _, err := q.GetPageByID(ctx, pageID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("page", pageID)
			}
			return fmt.Errorf("loading page: %w", err)
		}

		count, err := q.CountBlocksByPage(ctx, pageID)
		if err != nil {
			return fmt.Errorf("counting blocks: %w", err)
		}

		now := time.Now().UTC()
		created, err = q.CreateBlock(ctx, store.CreateBlockParams{
			PageID:    pageID,
			Type:      string(t),
			Data:      data,
			Position:  ordering.Next(count),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating block: %w", err)
		}
		return touchPage(ctx, q, pageID, now)
	})
	if err != nil {
		return Block{}, err
	}

	return decodeBlock(created), nil
}

// Edit replaces the payload of block id with one built from f. A rejected
// quiz document returns a *BlockEditError and leaves the block unchanged.
func (s *BlockService) Edit(ctx context.Context, p *auth.Principal, id int64, f model.Fields) (Block, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return Block{}, err
	}

	current, err := s.getBlock(ctx, s.queries, id)
	if err != nil {
		return Block{}, err
	}

	payload, err := model.ValidateEdit(model.BlockType(current.Type), f)
	if err != nil {
		return Block{}, &BlockEditError{
			ValidationError: newValidationError("data", err.Error()),
			Block:           decodeBlock(current),
		}
	}

	data, err := model.EncodePayload(payload)
	if err != nil {
		return Block{}, err
	}

	var updated store.Block
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		now := time.Now().UTC()
		updated, err = q.UpdateBlockData(ctx, store.UpdateBlockDataParams{Data: data, UpdatedAt: now, ID: id})
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("block", id)
		}
		if err != nil {
			return fmt.Errorf("updating block: %w", err)
		}
		return touchPage(ctx, q, updated.PageID, now)
	})
	if err != nil {
		return Block{}, err
	}

	return decodeBlock(updated), nil
}

// Delete removes block id and renumbers the rest of its page to 1..N.
// It returns the id of the owning page.
func (s *BlockService) Delete(ctx context.Context, p *auth.Principal, id int64) (int64, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return 0, err
	}

	var pageID int64
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		b, err := s.getBlock(ctx, q, id)
		if err != nil {
			return err
		}
		pageID = b.PageID

		if _, err := q.DeleteBlock(ctx, id); err != nil {
			return fmt.Errorf("deleting block: %w", err)
		}

		items, err := pageItems(ctx, q, pageID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := applyChanges(ctx, q, ordering.Renumber(items), now); err != nil {
			return err
		}
		return touchPage(ctx, q, pageID, now)
	})
	if err != nil {
		return 0, err
	}

	slog.Info("block deleted", "block_id", id, "page_id", pageID, "user", p.Username)
	return pageID, nil
}

// Move swaps block id with its neighbour in direction dir and returns the
// page's blocks in their new order. Moving past either end changes nothing.
func (s *BlockService) Move(ctx context.Context, p *auth.Principal, id int64, dir ordering.Direction) ([]Block, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return nil, err
	}
	if dir != ordering.Up && dir != ordering.Down {
		return nil, newValidationError("direction", ordering.ErrInvalidDirection.Error())
	}

	var rows []store.Block
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		b, err := s.getBlock(ctx, q, id)
		if err != nil {
			return err
		}

		items, err := pageItems(ctx, q, b.PageID)
		if err != nil {
			return err
		}

		changes, err := ordering.Move(items, id, dir)
		if err != nil {
			return fmt.Errorf("moving block %d: %w", id, err)
		}

		if len(changes) > 0 {
			now := time.Now().UTC()
			if err := applyChanges(ctx, q, changes, now); err != nil {
				return err
			}
			if err := touchPage(ctx, q, b.PageID, now); err != nil {
				return err
			}
		}

		rows, err = q.ListBlocksByPage(ctx, b.PageID)
		if err != nil {
			return fmt.Errorf("listing blocks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decodeBlocks(rows), nil
}

func (s *BlockService) getBlock(ctx context.Context, q *store.Queries, id int64) (store.Block, error) {
	b, err := q.GetBlockByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Block{}, notFound("block", id)
	}
	if err != nil {
		return store.Block{}, fmt.Errorf("loading block: %w", err)
	}
	return b, nil
}

func pageItems(ctx context.Context, q *store.Queries, pageID int64) ([]ordering.Item, error) {
	rows, err := q.ListBlocksByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	items := make([]ordering.Item, len(rows))
	for i, b := range rows {
		items[i] = ordering.Item{ID: b.ID, Position: b.Position}
	}
	return items, nil
}

// applyChanges writes position changes in two passes. UNIQUE(page_id,
// position) rejects any intermediate state where two blocks share a
// position, so every changed block is first parked at the negative of its
// id, which no live block can hold.
func applyChanges(ctx context.Context, q *store.Queries, changes []ordering.Change, now time.Time) error {
	if len(changes) == 0 {
		return nil
	}
	for _, c := range changes {
		if err := q.UpdateBlockPosition(ctx, store.UpdateBlockPositionParams{
			Position: -c.ID, UpdatedAt: now, ID: c.ID,
		}); err != nil {
			return fmt.Errorf("parking block %d: %w", c.ID, err)
		}
	}
	for _, c := range changes {
		if err := q.UpdateBlockPosition(ctx, store.UpdateBlockPositionParams{
			Position: c.To, UpdatedAt: now, ID: c.ID,
		}); err != nil {
			return fmt.Errorf("positioning block %d: %w", c.ID, err)
		}
	}
	return nil
}

func touchPage(ctx context.Context, q *store.Queries, pageID int64, now time.Time) error {
	if err := q.TouchPage(ctx, store.TouchPageParams{UpdatedAt: now, ID: pageID}); err != nil {
		return fmt.Errorf("touching page: %w", err)
	}
	return nil
}
