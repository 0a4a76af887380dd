package compose

import "errors"

var (
	// ErrOracleRequired indicates a nil oracle was passed to NewComposer.
	ErrOracleRequired = errors.New("oracle is required")

	// ErrNoReferences indicates Compose was called with no surviving
	// documents to write from.
	ErrNoReferences = errors.New("no references to compose from")
)
