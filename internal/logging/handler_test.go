// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func recentEvents(t *testing.T, q *store.Queries) []store.Event {
	t.Helper()
	events, err := q.ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	return events
}

func TestEventLogHandler_WritesWarnAndError(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("database connection failed", "host", "localhost", "port", 5432)

	events := recentEvents(t, store.New(db))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLevelError, events[0].Level)
	assert.Equal(t, model.EventCategorySystem, events[0].Category)
	assert.Equal(t, "database connection failed", events[0].Message)

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(events[0].Metadata), &meta))
	assert.Equal(t, "localhost", meta["host"])
	assert.Equal(t, "5432", meta["port"])
}

func TestEventLogHandler_SkipsInfo(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("page created", "page_id", 1)
	logger.Debug("noise")

	assert.Empty(t, recentEvents(t, store.New(db)))
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		msg   string
		attrs []any
		want  string
	}{
		{"failed login attempt", nil, model.EventCategoryAuth},
		{"permission denied", nil, model.EventCategoryAuth},
		{"block reorder failed", nil, model.EventCategoryBlock},
		{"page delete failed", nil, model.EventCategoryPage},
		{"upload rejected", nil, model.EventCategoryMedia},
		{"user removed", nil, model.EventCategoryUser},
		{"something odd", []any{"category", "page"}, model.EventCategoryPage},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			db := testutil.TestDB(t)
			slog.New(NewEventLogHandler(discardHandler{}, db)).Warn(tt.msg, tt.attrs...)

			events := recentEvents(t, store.New(db))
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Category)
			assert.Equal(t, model.EventLevelWarning, events[0].Level)
		})
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("request_id", "abc")

	logger.Warn("slow query")

	events := recentEvents(t, store.New(db))
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Metadata, `"request_id":"abc"`)
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelError))

	logger.Warn("ignored warning")
	logger.Error("recorded error")

	events := recentEvents(t, store.New(db))
	require.Len(t, events, 1)
	assert.Equal(t, "recorded error", events[0].Message)
}
