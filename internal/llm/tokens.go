package llm

import "strings"

// EstimateTokens approximates the token count of text for the generation
// model. English prose averages roughly four characters per token; counting
// words guards against long-run whitespace skewing the estimate downward.
//
// The session-memory buffer budgets with this same estimator, so eviction
// tracks what the generation client will actually consume.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byChars := len(text) / 4
	byWords := len(strings.Fields(text))
	if byWords > byChars {
		return byWords
	}
	return byChars
}
