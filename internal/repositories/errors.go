package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a compare-and-set write finds that the
	// stored status no longer matches the caller's previously-read status.
	ErrConflict = errors.New("status precondition failed")
)
