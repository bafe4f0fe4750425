package scoredb

import "errors"

var (
	// ErrNotFound indicates the requested score does not exist.
	ErrNotFound = errors.New("score not found")

	// ErrDuplicate indicates a score with the same round, player, type and
	// name already exists. Concurrent writers race on this constraint and the
	// loser receives this error.
	ErrDuplicate = errors.New("duplicate score")
)
