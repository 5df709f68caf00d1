package domain

import "errors"

// ErrSuperseded is returned by Completion.Wait when a newer transition replaced the awaited one.
var ErrSuperseded = errors.New("transition superseded")

// ErrNotRunning is returned when an operation needs a running scrambler.
var ErrNotRunning = errors.New("scrambler not running")

// ErrInvalidConfig is returned when configuration values cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrTextNotFound is returned by a TextStore when nothing was saved under a key.
var ErrTextNotFound = errors.New("text not found")
