// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// ValidRoles lists the roles a user account may hold.
var ValidRoles = []string{RoleAdmin, RoleEditor}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Authorization failures.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden: insufficient permissions")
	ErrSelfDeletion    = errors.New("cannot delete your own account")
)

// Principal is the authenticated identity carried by a request.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Action is an operation subject to authorization.
type Action string

// Gated actions.
const (
	ActionEditContent Action = "content.edit"   // create/edit/move pages and blocks, delete blocks
	ActionUploadMedia Action = "media.upload"
	ActionDeletePage  Action = "page.delete"
	ActionDeleteMedia Action = "media.delete"
	ActionManageUsers Action = "users.manage"
	ActionViewEvents  Action = "events.view"
	ActionOwnAccount  Action = "account.self" // change own password, view own identity
)

// requiredRole maps each action to the minimum role allowed to perform it.
var requiredRole = map[Action]string{
	ActionEditContent: RoleEditor,
	ActionUploadMedia: RoleEditor,
	ActionOwnAccount:  RoleEditor,
	ActionDeletePage:  RoleAdmin,
	ActionDeleteMedia: RoleAdmin,
	ActionManageUsers: RoleAdmin,
	ActionViewEvents:  RoleAdmin,
}

// roleLevel returns a numeric level for role hierarchy.
// Higher level = more permissions. Unknown roles have level 0.
func roleLevel(role string) int {
	switch role {
	case RoleAdmin:
		return 2
	case RoleEditor:
		return 1
	default:
		return 0
	}
}

// RequiredRole returns the minimum role for an action.
func RequiredRole(a Action) string {
	if role, ok := requiredRole[a]; ok {
		return role
	}
	return RoleAdmin
}

// Authorize decides whether p may perform a. A nil principal yields
// ErrUnauthenticated; an insufficient role yields ErrForbidden.
// Unknown actions require admin.
func Authorize(p *Principal, a Action) error {
	if p == nil || p.ID == 0 {
		return ErrUnauthenticated
	}
	if roleLevel(p.Role) < roleLevel(RequiredRole(a)) {
		return fmt.Errorf("%w: %s requires %s", ErrForbidden, a, RequiredRole(a))
	}
	return nil
}

// AuthorizeUserDeletion applies ActionManageUsers and additionally rejects
// deletion of the principal's own account.
func AuthorizeUserDeletion(p *Principal, targetID int64) error {
	if err := Authorize(p, ActionManageUsers); err != nil {
		return err
	}
	if p.ID == targetID {
		return ErrSelfDeletion
	}
	return nil
}
