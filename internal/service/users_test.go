// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/testutil"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "root", "password1", auth.RoleAdmin)
	svc := NewUserService(db)

	u, err := svc.Create(ctx, admin, UserInput{Username: " alice ", Password: "wonderland", Role: auth.RoleEditor})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "wonderland", u.PasswordHash)

	p, err := svc.Authenticate(ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, &auth.Principal{ID: u.ID, Username: "alice", Role: auth.RoleEditor}, p)

	_, err = svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "wonderland")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_CreateValidation(t *testing.T) {
	db := testutil.TestDB(t)
	admin := testutil.CreateUser(t, db, "root", "password1", auth.RoleAdmin)
	svc := NewUserService(db)

	tests := []struct {
		name  string
		in    UserInput
		field string
	}{
		{"missing username", UserInput{Password: "password1", Role: auth.RoleEditor}, "username"},
		{"short password", UserInput{Username: "bob", Password: "short", Role: auth.RoleEditor}, "password"},
		{"unknown role", UserInput{Username: "bob", Password: "password1", Role: "superuser"}, "role"},
		{"empty role", UserInput{Username: "bob", Password: "password1"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), admin, tt.in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestUserService_DuplicateUsername(t *testing.T) {
	db := testutil.TestDB(t)
	admin := testutil.CreateUser(t, db, "root", "password1", auth.RoleAdmin)

	_, err := NewUserService(db).Create(context.Background(), admin, UserInput{Username: "root", Password: "password1", Role: auth.RoleEditor})

	require.ErrorIs(t, err, ErrConflict)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "username", cerr.Field)
}

func TestUserService_EditorCannotManageUsers(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	editor := testutil.CreateUser(t, db, "ed", "password1", auth.RoleEditor)
	admin := testutil.CreateUser(t, db, "root", "password1", auth.RoleAdmin)
	svc := NewUserService(db)

	_, err := svc.Create(ctx, editor, UserInput{Username: "x", Password: "password1", Role: auth.RoleEditor})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = svc.List(ctx, editor)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, editor, admin.ID), auth.ErrForbidden)
}

func TestUserService_AdminCannotDeleteSelf(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "root", "password1", auth.RoleAdmin)
	editor := testutil.CreateUser(t, db, "ed", "password1", auth.RoleEditor)
	svc := NewUserService(db)

	err := svc.Delete(ctx, admin, admin.ID)
	require.ErrorIs(t, err, auth.ErrSelfDeletion)

	still, err := svc.Principal(ctx, admin.ID)
	require.NoError(t, err, "admin row must still exist")
	assert.Equal(t, admin.Username, still.Username)

	require.NoError(t, svc.Delete(ctx, admin, editor.ID))
	_, err = svc.Principal(ctx, editor.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, admin, editor.ID), ErrNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	editor := testutil.CreateUser(t, db, "ed", "password1", auth.RoleEditor)
	svc := NewUserService(db)

	var verr *ValidationError
	err := svc.ChangePassword(ctx, editor, "wrong-current", "newpassword")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	err = svc.ChangePassword(ctx, editor, "password1", "short")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "new_password")

	require.NoError(t, svc.ChangePassword(ctx, editor, "password1", "newpassword"))

	_, err = svc.Authenticate(ctx, "ed", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ed", "newpassword")
	assert.NoError(t, err)
}
