package store

import "errors"

var (
	// ErrNotFound is returned by a Backend when the key does not exist.
	ErrNotFound = errors.New("key not found")

	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrSongNotFound        = errors.New("song not found")
	ErrUnknownPlan         = errors.New("unknown plan")
)
