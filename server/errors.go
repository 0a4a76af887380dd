package server

import "errors"

var (
	// ErrRunnerRequired is returned when a dispatch mode has no runner.
	ErrRunnerRequired = errors.New("runner required for each dispatch mode")

	// ErrUnknownMode is returned when the default mode names no runner.
	ErrUnknownMode = errors.New("unknown dispatch mode")
)
