package gamedb

import "errors"

// Sentinel errors for the repository layer. The service layer decides how
// they surface to callers.
var (
	// ErrNotFound indicates the requested game does not exist.
	ErrNotFound = errors.New("game not found")
)
