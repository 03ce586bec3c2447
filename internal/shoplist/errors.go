package shoplist

import "errors"

// Sentinel errors returned by List operations. Use errors.Is to check them.
var (
	// ErrNotFound means no item has the requested id. Nothing changed.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidTitle means the title was empty, whitespace only or too
	// long. Nothing changed.
	ErrInvalidTitle = errors.New("invalid title")

	// ErrStoreWrite wraps a failed Save. The in-memory change was applied
	// and stays applied; only durability is in question.
	ErrStoreWrite = errors.New("store write failed")
)
