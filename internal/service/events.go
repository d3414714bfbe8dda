// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the content operations: pages, ordered blocks,
// media and accounts. Every mutating method takes the acting principal and
// checks it against the authorization policy before touching storage.
package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/store"
)

// Event list bounds.
const (
	DefaultEventLimit = 100
	MaxEventLimit     = 500
)

// EventService reads the event log.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{queries: store.New(db)}
}

// Recent returns the newest events. Admin only.
func (s *EventService) Recent(ctx context.Context, p *auth.Principal, limit int) ([]store.Event, error) {
	if err := auth.Authorize(p, auth.ActionViewEvents); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	limit = min(limit, MaxEventLimit)

	events, err := s.queries.ListRecentEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}
