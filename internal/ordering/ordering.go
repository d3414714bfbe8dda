// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ordering maintains gapless 1..N positions for the blocks of a page.
//
// Positions are plain ordinals. The only mutations are append at the end,
// delete anywhere followed by a full renumber, and a swap of two adjacent
// items. The functions here are pure: they compute position changes and
// leave persistence to the caller.
package ordering

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Item is an element with an identity and a position.
type Item struct {
	ID       int64
	Position int64
}

// Change moves the item ID from position From to position To.
type Change struct {
	ID   int64
	From int64
	To   int64
}

// Direction of a move.
type Direction string

// Move directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

var (
	// ErrItemNotFound is returned when the item to move is not in the list.
	ErrItemNotFound = errors.New("item not found in list")
	// ErrInvalidDirection is returned for a direction other than up or down.
	ErrInvalidDirection = errors.New("direction must be \"up\" or \"down\"")
)

// ParseDirection parses "up" or "down" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidDirection, s)
}

// Next returns the position for a new item appended after count items.
func Next(count int64) int64 {
	return count + 1
}

// Sorted returns a copy of items in display order: ascending position, ties
// broken by ID so the order is deterministic even for damaged data.
func Sorted(items []Item) []Item {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b Item) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Renumber assigns consecutive positions starting at 1 in display order and
// returns only the items whose position changes. Positions are recomputed
// from scratch, so any gaps or duplicates left by earlier failures heal.
func Renumber(items []Item) []Change {
	var changes []Change
	for i, it := range Sorted(items) {
		want := int64(i + 1)
		if it.Position != want {
			changes = append(changes, Change{ID: it.ID, From: it.Position, To: want})
		}
	}
	return changes
}

// Move swaps the position of item id with its neighbour in direction dir.
// Moving the first item up or the last item down is a no-op and returns no
// changes. Only the two swapped items ever change.
func Move(items []Item, id int64, dir Direction) ([]Change, error) {
	if dir != Up && dir != Down {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidDirection, dir)
	}

	sorted := Sorted(items)
	idx := slices.IndexFunc(sorted, func(it Item) bool { return it.ID == id })
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if target < 0 || target >= len(sorted) {
		return nil, nil
	}

	a, b := sorted[idx], sorted[target]
	return []Change{
		{ID: a.ID, From: a.Position, To: b.Position},
		{ID: b.ID, From: b.Position, To: a.Position},
	}, nil
}

// Apply returns a copy of items with changes applied.
func Apply(items []Item, changes []Change) []Item {
	out := slices.Clone(items)
	for _, c := range changes {
		for i := range out {
			if out[i].ID == c.ID {
				out[i].Position = c.To
			}
		}
	}
	return out
}

// Verify checks that items hold exactly the positions 1..len(items).
func Verify(items []Item) error {
	seen := make(map[int64]int64, len(items))
	n := int64(len(items))
	for _, it := range items {
		if it.Position < 1 || it.Position > n {
			return fmt.Errorf("item %d has position %d outside 1..%d", it.ID, it.Position, n)
		}
		if other, dup := seen[it.Position]; dup {
			return fmt.Errorf("items %d and %d share position %d", other, it.ID, it.Position)
		}
		seen[it.Position] = it.ID
	}
	return nil
}
