package summarize

import "errors"

var (
	// ErrOracleRequired indicates a nil oracle was passed to NewSynthesizer.
	ErrOracleRequired = errors.New("oracle is required")
)
