// Package pipeline orchestrates a query's end-to-end run.
//
// A run retrieves candidate documents, scores them with repeated oracle
// judgments, and composes a single cited report from the survivors. Stage
// failures abort the run with an error wrapping ErrRunFailed; an empty
// survivor set is not a failure but a StatusNoEvidence result.
package pipeline
