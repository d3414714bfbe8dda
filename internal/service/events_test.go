// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestEventService_Recent(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "root", "password1", auth.RoleAdmin)
	editor := testutil.CreateUser(t, db, "ed", "password1", auth.RoleEditor)

	q := store.New(db)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		_, err := q.CreateEvent(ctx, store.CreateEventParams{
			Level: model.EventLevelWarning, Category: model.EventCategoryAuth,
			Message: fmt.Sprintf("event %d", i), Metadata: "{}", CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	svc := NewEventService(db)

	events, err := svc.Recent(ctx, admin, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "event 4", events[0].Message)

	events, err = svc.Recent(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	_, err = svc.Recent(ctx, editor, 10)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
