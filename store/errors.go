package store

import "errors"

var (
	// ErrStorage marks the store as unreadable or unwritable.
	// Enforcement call sites must degrade gracefully on this: log it,
	// then allow or deny on their own logic. Use Record for that path.
	ErrStorage = errors.New("event store unavailable")

	// ErrLockTimeout means prune could not acquire its exclusive lock
	// within the bounded wait. The store is left unchanged.
	ErrLockTimeout = errors.New("store lock not acquired")
)
