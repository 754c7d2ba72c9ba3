// Package schema has the item, result and status models shared by all parts of witdiff.
package schema

import "errors"

// Sentinel errors for structural problems. These indicate a bug in the
// decomposition tables or the matching logic, not bad user input.
var (
	// ErrNoDecomposition is returned when an item type has no defined part layout.
	ErrNoDecomposition = errors.New("item type has no defined decomposition")

	// ErrPartMismatch is returned when source and target parts cannot be paired.
	ErrPartMismatch = errors.New("part names do not pair between source and target")

	// ErrMissingNode is returned when a required element is absent from an item.
	ErrMissingNode = errors.New("required element is missing")
)
