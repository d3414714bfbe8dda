// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUniqueViolation is returned (wrapped) when an insert or update breaks a
// UNIQUE constraint. Callers match it with errors.Is and never need to know
// the engine's error codes. Missing rows are reported as sql.ErrNoRows.
var ErrUniqueViolation = errors.New("unique constraint violation")

// mapError translates engine-specific constraint errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}
	return err
}
