package pipeline

import "errors"

var (
	// ErrScorerRequired is returned when a scorer is not provided.
	ErrScorerRequired = errors.New("scorer required")

	// ErrComposerRequired is returned when a composer is not provided.
	ErrComposerRequired = errors.New("composer required")

	// ErrRetrieverRequired is returned when Answer is called on a pipeline
	// built without a retriever.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrRunFailed wraps any stage failure that aborts a run. Callers can
	// match it with errors.Is to render a degraded response.
	ErrRunFailed = errors.New("pipeline run failed")
)
