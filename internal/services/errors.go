package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers rejected input: missing price, empty product
	// selection, out-of-catalog products. No state is mutated.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition covers illegal status moves: skips, backward
	// moves, cancels from disallowed states. No state is mutated.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyFinalized is the hard-error answer to a second Finalize on a
	// bid that is already bidded or completed.
	ErrAlreadyFinalized = fmt.Errorf("%w: bid already finalized", ErrInvalidTransition)

	// ErrCancellationFailed is surfaced when the provider explicitly denies
	// a cancellation. Local state is left untouched.
	ErrCancellationFailed = errors.New("cancellation failed")
)
