// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also records warnings and
// errors in the events table, so administrators can audit denied actions and
// failures without shell access.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// records at or above its level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
}

// NewEventLogHandler forwards WARN and above to the event log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// writeToEventLog uses a background context so the event survives a
// cancelled request.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := h.collectAttrs(r)

	createdAt := r.Time
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: createdAt.UTC(),
	})
}

func (h *EventLogHandler) collectAttrs(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// category uses an explicit "category" attribute or infers one from the message.
func category(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			return a.Value.String()
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "auth") || strings.Contains(msg, "denied"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "block"):
		return model.EventCategoryBlock
	case strings.Contains(msg, "page"):
		return model.EventCategoryPage
	case strings.Contains(msg, "media") || strings.Contains(msg, "upload"):
		return model.EventCategoryMedia
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	default:
		return model.EventCategorySystem
	}
}

func metadata(attrs []slog.Attr) string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		m[a.Key] = a.Value.String()
	}
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
