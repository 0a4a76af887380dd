package scoring

import (
	"regexp"
	"strconv"
)

var scorePattern = regexp.MustCompile(`\b(\d{1,3})\b`)

// ExtractScore parses a relevance score out of an oracle's free-text response.
// It takes the first standalone 1-3 digit number and clamps it to [0,100].
// A response with no extractable number yields 0. That fallback is silent by
// contract: a judgment that cannot be parsed counts as a zero sample rather
// than an error, which can drag a document's average down. Callers that want
// visibility should log when ok is false.
func ExtractScore(text string) (score int, ok bool) {
	match := scorePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n, true
}
