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
	"unicode/utf8"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/store"
)

// Account limits.
const (
	MinPasswordLength = 8
	MaxUsernameLength = 64
)

// dummyHash is verified against when the username does not exist so that
// failed logins take the same time either way.
var dummyHash, _ = auth.HashPassword("blockcms-timing-equalizer")

// UserService manages accounts and sign-in.
type UserService struct {
	queries *store.Queries
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{queries: store.New(db)}
}

// UserInput is a new account submission.
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create adds an account. An unknown role is rejected. Admin only.
func (s *UserService) Create(ctx context.Context, p *auth.Principal, in UserInput) (store.User, error) {
	if err := auth.Authorize(p, auth.ActionManageUsers); err != nil {
		return store.User{}, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Role = strings.TrimSpace(in.Role)

	fields := map[string]string{}
	switch {
	case in.Username == "":
		fields["username"] = "Username is required"
	case utf8.RuneCountInString(in.Username) > MaxUsernameLength:
		fields["username"] = fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength)
	}
	if msg := checkPassword(in.Password); msg != "" {
		fields["password"] = msg
	}
	if !auth.IsValidRole(in.Role) {
		fields["role"] = fmt.Sprintf("Role must be one of %s", strings.Join(auth.ValidRoles, ", "))
	}
	if len(fields) > 0 {
		return store.User{}, &ValidationError{Fields: fields}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrUniqueViolation) {
		return store.User{}, &ConflictError{
			Field:   "username",
			Message: fmt.Sprintf("Username %q is already taken, choose another", in.Username),
		}
	}
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role, "by", p.Username)
	return user, nil
}

// Delete removes account id. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.AuthorizeUserDeletion(p, id); err != nil {
		return err
	}

	n, err := s.queries.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n == 0 {
		return notFound("user", id)
	}

	slog.Info("user deleted", "user_id", id, "by", p.Username)
	return nil
}

// List returns all accounts. Admin only.
func (s *UserService) List(ctx context.Context, p *auth.Principal) ([]store.User, error) {
	if err := auth.Authorize(p, auth.ActionManageUsers); err != nil {
		return nil, err
	}
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Authenticate checks credentials and returns the signed-in identity.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*auth.Principal, error) {
	user, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, sql.ErrNoRows) {
		_, _ = auth.CheckPassword(password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return principalOf(user), nil
}

// Principal reloads the identity of account id, so that deleted accounts and
// role changes take effect on the next request.
func (s *UserService) Principal(ctx context.Context, id int64) (*auth.Principal, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return principalOf(user), nil
}

// ChangePassword replaces the principal's own password after verifying the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, p *auth.Principal, current, next string) error {
	if err := auth.Authorize(p, auth.ActionOwnAccount); err != nil {
		return err
	}

	user, err := s.queries.GetUserByID(ctx, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("user", p.ID)
	}
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if !ok {
		return newValidationError("current_password", "Current password is incorrect")
	}
	if msg := checkPassword(next); msg != "" {
		return newValidationError("new_password", msg)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{PasswordHash: hash, ID: p.ID}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	slog.Info("password changed", "user_id", p.ID)
	return nil
}

func checkPassword(pw string) string {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	return ""
}

func principalOf(u store.User) *auth.Principal {
	return &auth.Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}
