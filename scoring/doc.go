// Package scoring judges candidate documents against a query.
//
// Each document receives a configurable number of independent relevance
// judgments from the oracle; the judgments are averaged and documents below
// the threshold are filtered out. Survivors are summarized at a detail
// level proportional to their score and returned sorted best-first.
//
// Scoring runs sequentially or on a bounded worker pool; in both modes the
// repeated judgments for a single document stay strictly sequential.
package scoring
