// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when the addressed page, block, media item or
	// user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned by Authenticate for any failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports rejected input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ConflictError reports a value that must be unique and is already taken.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}
