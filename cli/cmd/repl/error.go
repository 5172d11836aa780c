package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrBinding      = errors.New("invalid binding (want NAME = EXPR)")
	ErrNoLanguage   = errors.New("no language")
)
