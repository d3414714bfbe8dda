// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// testDB creates a migrated database in a temporary directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func createTestPage(t *testing.T, q *Queries, slug string, updatedAt time.Time) Page {
	t.Helper()

	p, err := q.CreatePage(context.Background(), CreatePageParams{
		Title:     "Page " + slug,
		Slug:      slug,
		Audience:  "general",
		Status:    "draft",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		t.Fatalf("CreatePage(%q): %v", slug, err)
	}
	return p
}

func createTestBlock(t *testing.T, q *Queries, pageID, position int64) Block {
	t.Helper()

	now := time.Now().UTC()
	b, err := q.CreateBlock(context.Background(), CreateBlockParams{
		PageID:    pageID,
		Type:      "text",
		Data:      `{"heading":"h","body":""}`,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	return b
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{
		Username:     "alice",
		PasswordHash: "hashed-password",
		Role:         "editor",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}

	found, err := q.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("ID = %d, want %d", found.ID, user.ID)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	params := CreateUserParams{Username: "bob", PasswordHash: "h", Role: "editor", CreatedAt: time.Now().UTC()}
	if _, err := q.CreateUser(ctx, params); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := q.CreateUser(ctx, params)
	if !errors.Is(err, ErrUniqueViolation) {
		t.Errorf("second CreateUser error = %v, want ErrUniqueViolation", err)
	}
}

func TestCreateUser_InvalidRoleRejected(t *testing.T) {
	db := testDB(t)
	q := New(db)

	_, err := q.CreateUser(context.Background(), CreateUserParams{
		Username: "mallory", PasswordHash: "h", Role: "superuser", CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("CreateUser with unknown role should fail the CHECK constraint")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := New(db).GetUserByID(context.Background(), 9999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{Username: "carol", PasswordHash: "h", Role: "admin", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	n, err := q.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	n, err = q.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("second DeleteUser: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected on missing user = %d, want 0", n)
	}
}

func TestCreatePage_DuplicateSlug(t *testing.T) {
	db := testDB(t)
	q := New(db)

	createTestPage(t, q, "sensors-101", time.Now().UTC())

	_, err := q.CreatePage(context.Background(), CreatePageParams{
		Title: "Other", Slug: "sensors-101", Audience: "general", Status: "draft",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Errorf("CreatePage error = %v, want ErrUniqueViolation", err)
	}
}

func TestUpdatePage_DuplicateSlugLeavesRowUnchanged(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC()
	createTestPage(t, q, "first", now)
	second := createTestPage(t, q, "second", now)

	_, err := q.UpdatePage(ctx, UpdatePageParams{
		Title: "Renamed", Slug: "first", Audience: "general", Status: "draft",
		UpdatedAt: now, ID: second.ID,
	})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("UpdatePage error = %v, want ErrUniqueViolation", err)
	}

	got, err := q.GetPageByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetPageByID: %v", err)
	}
	if got.Slug != "second" || got.Title != second.Title {
		t.Errorf("page changed after failed update: %+v", got)
	}
}

func TestListPages_MostRecentlyUpdatedFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	createTestPage(t, q, "old", base)
	newest := createTestPage(t, q, "newest", base.Add(2*time.Hour))
	middle := createTestPage(t, q, "middle", base.Add(time.Hour))

	pages, err := q.ListPages(ctx)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}

	want := []string{"newest", "middle", "old"}
	if len(pages) != len(want) {
		t.Fatalf("len(pages) = %d, want %d", len(pages), len(want))
	}
	for i, slug := range want {
		if pages[i].Slug != slug {
			t.Errorf("pages[%d].Slug = %q, want %q", i, pages[i].Slug, slug)
		}
	}

	// Touching a page moves it to the front.
	if err := q.TouchPage(ctx, TouchPageParams{UpdatedAt: base.Add(3 * time.Hour), ID: middle.ID}); err != nil {
		t.Fatalf("TouchPage: %v", err)
	}
	pages, err = q.ListPages(ctx)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if pages[0].ID != middle.ID || pages[1].ID != newest.ID {
		t.Errorf("order after touch = [%s %s], want [middle newest]", pages[0].Slug, pages[1].Slug)
	}
}

func TestListPagesByStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now().UTC()
	draft := createTestPage(t, q, "draft-page", now)
	published := createTestPage(t, q, "published-page", now)
	if _, err := q.UpdatePage(ctx, UpdatePageParams{
		Title: published.Title, Slug: published.Slug, Audience: published.Audience,
		Status: "published", UpdatedAt: now, ID: published.ID,
	}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	pages, err := q.ListPagesByStatus(ctx, "published")
	if err != nil {
		t.Fatalf("ListPagesByStatus: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != published.ID {
		t.Errorf("published pages = %+v, want only %d", pages, published.ID)
	}

	if _, err := q.GetPublishedPageBySlug(ctx, draft.Slug); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPublishedPageBySlug(draft) error = %v, want sql.ErrNoRows", err)
	}
}

func TestSlugExists(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	p := createTestPage(t, q, "taken", time.Now().UTC())

	exists, err := q.SlugExists(ctx, "taken")
	if err != nil || !exists {
		t.Errorf("SlugExists(taken) = %v, %v; want true, nil", exists, err)
	}
	exists, err = q.SlugExists(ctx, "free")
	if err != nil || exists {
		t.Errorf("SlugExists(free) = %v, %v; want false, nil", exists, err)
	}
	exists, err = q.SlugExistsExcluding(ctx, SlugExistsExcludingParams{Slug: "taken", ID: p.ID})
	if err != nil || exists {
		t.Errorf("SlugExistsExcluding(own slug) = %v, %v; want false, nil", exists, err)
	}
}

func TestDeletePage_CascadesBlocks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "doomed", time.Now().UTC())
	b1 := createTestBlock(t, q, page.ID, 1)
	createTestBlock(t, q, page.ID, 2)

	n, err := q.DeletePage(ctx, page.ID)
	if err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	count, err := q.CountBlocksByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("CountBlocksByPage: %v", err)
	}
	if count != 0 {
		t.Errorf("blocks left after page delete = %d, want 0", count)
	}
	if _, err := q.GetBlockByID(ctx, b1.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetBlockByID after cascade = %v, want sql.ErrNoRows", err)
	}
}

func TestListBlocksByPage_OrderedByPosition(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "ordered", time.Now().UTC())
	third := createTestBlock(t, q, page.ID, 3)
	first := createTestBlock(t, q, page.ID, 1)
	second := createTestBlock(t, q, page.ID, 2)

	blocks, err := q.ListBlocksByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListBlocksByPage: %v", err)
	}

	want := []int64{first.ID, second.ID, third.ID}
	for i, id := range want {
		if blocks[i].ID != id {
			t.Errorf("blocks[%d].ID = %d, want %d", i, blocks[i].ID, id)
		}
	}
}

func TestBlockPosition_UniquePerPage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "unique-positions", time.Now().UTC())
	createTestBlock(t, q, page.ID, 1)
	b2 := createTestBlock(t, q, page.ID, 2)

	err := q.UpdateBlockPosition(ctx, UpdateBlockPositionParams{Position: 1, UpdatedAt: time.Now().UTC(), ID: b2.ID})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Errorf("UpdateBlockPosition error = %v, want ErrUniqueViolation", err)
	}

	other := createTestPage(t, q, "other", time.Now().UTC())
	createTestBlock(t, q, other.ID, 1)
}

func TestInTx_RollbackOnError(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := InTx(ctx, db, func(q *Queries) error {
		createTestPage(t, q, "rolled-back", time.Now().UTC())
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("InTx error = %v, want errBoom", err)
	}

	exists, err := New(db).SlugExists(ctx, "rolled-back")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("page should not exist after rollback")
	}
}

func TestMedia(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	m, err := q.CreateMedia(ctx, CreateMediaParams{
		Filename: "abc.png", OriginalName: "diagram.png", MimeType: "image/png",
		Size: 42, Url: "/uploads/abc.png", CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	items, err := q.ListMedia(ctx)
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(items) != 1 || items[0].OriginalName != "diagram.png" {
		t.Errorf("ListMedia = %+v", items)
	}

	n, err := q.DeleteMedia(ctx, m.ID)
	if err != nil || n != 1 {
		t.Errorf("DeleteMedia = %d, %v; want 1, nil", n, err)
	}
}

func TestEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level: "warning", Category: "auth", Message: msg, Metadata: "{}",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListRecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 || events[0].Message != "third" || events[1].Message != "second" {
		t.Errorf("ListRecentEvents = %+v", events)
	}
}

func TestSeed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db, "admin", "s3cret-pass"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(ctx, db, "admin", "other-pass"); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	q := New(db)
	count, err := q.CountUsersByRole(ctx, "admin")
	if err != nil {
		t.Fatalf("CountUsersByRole: %v", err)
	}
	if count != 1 {
		t.Errorf("admin count = %d, want 1", count)
	}

	user, err := q.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("Role = %q, want admin", user.Role)
	}
}
