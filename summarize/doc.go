// Package summarize produces per-document summaries sized by relevance.
//
// A document's average relevance score selects a length tier; the
// synthesizer asks the oracle for a summary within that tier's word band
// while preserving the article's facts, quotes, and named entities.
package summarize
