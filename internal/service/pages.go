// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/util"
)

// PageInput is the editable part of a page. Empty Slug derives one from
// Title; empty Audience and Status take their defaults.
type PageInput struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Audience string `json:"audience"`
	Status   string `json:"status"`
}

// PageWithBlocks is a page and its blocks in display order.
type PageWithBlocks struct {
	store.Page
	Blocks []Block `json:"blocks"`
}

// PageService manages pages.
type PageService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewPageService creates a new PageService.
func NewPageService(db *sql.DB) *PageService {
	return &PageService{db: db, queries: store.New(db)}
}

// normalize validates in and fills defaults.
func (in PageInput) normalize() (PageInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Audience = strings.TrimSpace(in.Audience)
	in.Status = strings.TrimSpace(in.Status)

	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "Title is required"
	}

	source := in.Slug
	if source == "" {
		source = in.Title
	}
	in.Slug = util.Slugify(source)
	if in.Slug == "" && in.Title != "" {
		fields["slug"] = "Slug must contain at least one letter or digit"
	}

	if in.Audience == "" {
		in.Audience = model.AudienceGeneral
	} else if !model.IsValidAudience(in.Audience) {
		fields["audience"] = fmt.Sprintf("Audience must be one of %s", strings.Join(model.ValidAudiences, ", "))
	}

	if in.Status == "" {
		in.Status = model.PageStatusDraft
	} else if !model.IsValidPageStatus(in.Status) {
		fields["status"] = fmt.Sprintf("Status must be one of %s", strings.Join(model.ValidPageStatuses, ", "))
	}

	if len(fields) > 0 {
		return in, &ValidationError{Fields: fields}
	}
	return in, nil
}

func slugConflict(slug string) *ConflictError {
	return &ConflictError{
		Field:   "slug",
		Message: fmt.Sprintf("A page with slug %q already exists, choose another", slug),
	}
}

// Create adds a page.
func (s *PageService) Create(ctx context.Context, p *auth.Principal, in PageInput) (store.Page, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return store.Page{}, err
	}

	in, err := in.normalize()
	if err != nil {
		return store.Page{}, err
	}

	exists, err := s.queries.SlugExists(ctx, in.Slug)
	if err != nil {
		return store.Page{}, fmt.Errorf("checking slug: %w", err)
	}
	if exists {
		return store.Page{}, slugConflict(in.Slug)
	}

	now := time.Now().UTC()
	page, err := s.queries.CreatePage(ctx, store.CreatePageParams{
		Title:     in.Title,
		Slug:      in.Slug,
		Audience:  in.Audience,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, store.ErrUniqueViolation) {
		return store.Page{}, slugConflict(in.Slug)
	}
	if err != nil {
		return store.Page{}, fmt.Errorf("creating page: %w", err)
	}

	slog.Info("page created", "page_id", page.ID, "slug", page.Slug, "user", p.Username)
	return page, nil
}

// Update replaces the editable fields of page id.
func (s *PageService) Update(ctx context.Context, p *auth.Principal, id int64, in PageInput) (store.Page, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return store.Page{}, err
	}

	in, err := in.normalize()
	if err != nil {
		return store.Page{}, err
	}

	if _, err := s.queries.GetPageByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Page{}, notFound("page", id)
		}
		return store.Page{}, fmt.Errorf("loading page: %w", err)
	}

	taken, err := s.queries.SlugExistsExcluding(ctx, store.SlugExistsExcludingParams{Slug: in.Slug, ID: id})
	if err != nil {
		return store.Page{}, fmt.Errorf("checking slug: %w", err)
	}
	if taken {
		return store.Page{}, slugConflict(in.Slug)
	}

	page, err := s.queries.UpdatePage(ctx, store.UpdatePageParams{
		Title:     in.Title,
		Slug:      in.Slug,
		Audience:  in.Audience,
		Status:    in.Status,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	switch {
	case errors.Is(err, store.ErrUniqueViolation):
		return store.Page{}, slugConflict(in.Slug)
	case errors.Is(err, sql.ErrNoRows):
		return store.Page{}, notFound("page", id)
	case err != nil:
		return store.Page{}, fmt.Errorf("updating page: %w", err)
	}

	return page, nil
}

// Delete removes a page and, through the foreign key cascade, all of its
// blocks in the same statement. Admin only.
func (s *PageService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.Authorize(p, auth.ActionDeletePage); err != nil {
		return err
	}

	n, err := s.queries.DeletePage(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}
	if n == 0 {
		return notFound("page", id)
	}

	slog.Info("page deleted", "page_id", id, "user", p.Username)
	return nil
}

// List returns every page for the admin dashboard, most recently updated first.
func (s *PageService) List(ctx context.Context, p *auth.Principal) ([]store.Page, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return nil, err
	}
	pages, err := s.queries.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	return pages, nil
}

// Get returns page id with its blocks regardless of status.
func (s *PageService) Get(ctx context.Context, p *auth.Principal, id int64) (PageWithBlocks, error) {
	if err := auth.Authorize(p, auth.ActionEditContent); err != nil {
		return PageWithBlocks{}, err
	}

	page, err := s.queries.GetPageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return PageWithBlocks{}, notFound("page", id)
	}
	if err != nil {
		return PageWithBlocks{}, fmt.Errorf("loading page: %w", err)
	}
	return s.withBlocks(ctx, page)
}

// ListPublished returns published pages, most recently updated first.
func (s *PageService) ListPublished(ctx context.Context) ([]store.Page, error) {
	pages, err := s.queries.ListPagesByStatus(ctx, model.PageStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("listing published pages: %w", err)
	}
	return pages, nil
}

// GetPublished returns a published page by slug. Drafts are not found.
func (s *PageService) GetPublished(ctx context.Context, slug string) (PageWithBlocks, error) {
	if !util.IsValidSlug(slug) {
		return PageWithBlocks{}, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	page, err := s.queries.GetPublishedPageBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return PageWithBlocks{}, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return PageWithBlocks{}, fmt.Errorf("loading page: %w", err)
	}
	return s.withBlocks(ctx, page)
}

func (s *PageService) withBlocks(ctx context.Context, page store.Page) (PageWithBlocks, error) {
	rows, err := s.queries.ListBlocksByPage(ctx, page.ID)
	if err != nil {
		return PageWithBlocks{}, fmt.Errorf("listing blocks: %w", err)
	}
	return PageWithBlocks{Page: page, Blocks: decodeBlocks(rows)}, nil
}
