// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const userColumns = `id, username, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (username, password_hash, role, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.PasswordHash, arg.Role, arg.CreatedAt)
	u, err := scanUser(row)
	return u, mapError(err)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY username`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const countUsersByRole = `-- name: CountUsersByRole :one
SELECT COUNT(*) FROM users WHERE role = ?`

func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsersByRole, role).Scan(&count)
	return count, err
}

const updateUserPassword = `-- name: UpdateUserPassword :execrows
UPDATE users SET password_hash = ? WHERE id = ?`

type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           int64
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteUser = `-- name: DeleteUser :execrows
DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
