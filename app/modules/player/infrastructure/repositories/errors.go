package playerdb

import "errors"

var (
	// ErrNotFound indicates the requested player does not exist.
	ErrNotFound = errors.New("player not found")

	// ErrDuplicate indicates another player of the game already uses the pseudo.
	ErrDuplicate = errors.New("duplicate player pseudo")
)
