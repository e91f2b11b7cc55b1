// Package repository defines error types that are reused across the state
// repositories.  These sentinel values allow higher layers such as the board
// stores to tell an absent key apart from a storage failure.
package repository

import "errors"

// ErrNotFound is returned by Load when nothing has been stored under the
// requested key yet.  Stores treat it as an empty collection.
var ErrNotFound = errors.New("state not found")
