package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds = errors.New("index out of range")
	ErrNoModule    = errors.New("no module loaded")
	ErrUsage       = errors.New("usage")
)
