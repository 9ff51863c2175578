package shared

import "errors"

var (
	// ErrActorMissing indicates a write request without an acting user.
	ErrActorMissing = errors.New("actor missing")
)
