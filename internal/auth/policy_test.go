// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"testing"
)

func TestRoleLevel(t *testing.T) {
	tests := []struct {
		role     string
		expected int
	}{
		{"admin", 2},
		{"editor", 1},
		{"public", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := roleLevel(tt.role); got != tt.expected {
				t.Errorf("roleLevel(%q) = %d, want %d", tt.role, got, tt.expected)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	admin := &Principal{ID: 1, Username: "root", Role: RoleAdmin}
	editor := &Principal{ID: 2, Username: "ed", Role: RoleEditor}
	stranger := &Principal{ID: 3, Username: "x", Role: "viewer"}

	tests := []struct {
		name      string
		principal *Principal
		action    Action
		want      error
	}{
		{"anonymous edit", nil, ActionEditContent, ErrUnauthenticated},
		{"zero principal", &Principal{}, ActionEditContent, ErrUnauthenticated},
		{"editor edits content", editor, ActionEditContent, nil},
		{"editor uploads media", editor, ActionUploadMedia, nil},
		{"editor deletes page", editor, ActionDeletePage, ErrForbidden},
		{"editor deletes media", editor, ActionDeleteMedia, ErrForbidden},
		{"editor manages users", editor, ActionManageUsers, ErrForbidden},
		{"admin deletes page", admin, ActionDeletePage, nil},
		{"admin deletes media", admin, ActionDeleteMedia, nil},
		{"admin manages users", admin, ActionManageUsers, nil},
		{"unknown role edits", stranger, ActionEditContent, ErrForbidden},
		{"unknown action needs admin", editor, Action("mystery"), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.action)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Authorize() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Authorize() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthorizeUserDeletion(t *testing.T) {
	admin := &Principal{ID: 1, Role: RoleAdmin}
	editor := &Principal{ID: 2, Role: RoleEditor}

	if err := AuthorizeUserDeletion(admin, 1); !errors.Is(err, ErrSelfDeletion) {
		t.Errorf("self deletion = %v, want ErrSelfDeletion", err)
	}
	if err := AuthorizeUserDeletion(admin, 2); err != nil {
		t.Errorf("admin deleting other user = %v, want nil", err)
	}
	if err := AuthorizeUserDeletion(editor, 1); !errors.Is(err, ErrForbidden) {
		t.Errorf("editor deleting user = %v, want ErrForbidden", err)
	}
	if err := AuthorizeUserDeletion(nil, 1); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous deleting user = %v, want ErrUnauthenticated", err)
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"admin", "editor"} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false", role)
		}
	}
	for _, role := range []string{"", "Admin", "viewer"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true", role)
		}
	}
}
