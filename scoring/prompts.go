package scoring

import (
	"fmt"
	"time"

	"github.com/poiesic/chronicle/core"
)

const judgmentPromptTemplate = `You are a professional news analyst. Assess how relevant the following news document is to the query topic.

Query: %s
Date: %s
Title: %s
Summary: %s

Based on the relevance between the document and the query, give a score from 0 to 100:
- 90-100: fully relevant, directly addresses the query topic.
- 70-89: highly relevant, closely related to the query topic but may drift slightly from its core.
- 50-69: partially relevant, some of the content touches on the query topic but it is not the main subject.
- 0-49: not relevant, minimal or no relation to the query topic.

Output a single number between 0 and 100. Do not add any explanation.`

// judgmentPrompt builds one relevance-judgment prompt for a document.
// The short summary is used rather than the full content to keep the
// prompt small; documents without a summary fall back to their content.
func judgmentPrompt(query string, doc *core.Document) string {
	summary := doc.ShortSummary
	if summary == "" {
		summary = doc.FullContent
	}
	return fmt.Sprintf(judgmentPromptTemplate,
		query,
		doc.Date.Format(time.DateOnly),
		doc.Title,
		summary,
	)
}
