package rounddb

import "errors"

var (
	// ErrNotFound indicates the requested round does not exist.
	ErrNotFound = errors.New("round not found")

	// ErrDuplicate indicates the game already has a round with that number.
	ErrDuplicate = errors.New("duplicate round number")
)
