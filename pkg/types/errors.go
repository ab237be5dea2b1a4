package types

import "errors"

// Domain errors shared across packages.
var (
	// ErrInvalidMatchMode is returned when a match mode string is not one
	// of substring, exact or regex.
	ErrInvalidMatchMode = errors.New("invalid match mode")
)
