package agents

import (
	"context"
	"fmt"

	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/search"
)

const dataSystemPrompt = `You are a research analyst gathering supporting data for an executive
comment. From the search results, extract the statistics, figures and findings most relevant to
the question, each with its source. Only report numbers that actually appear in the results. If
nothing relevant appears, say "No supporting data found."`

// DataResearcher gathers statistics and findings relevant to the journalist's
// question.
type DataResearcher struct {
	llm    llm.Client
	search search.Client
}

func NewDataResearcher(client llm.Client, s search.Client) *DataResearcher {
	return &DataResearcher{llm: client, search: s}
}

// Research searches for data supporting an answer to the question. Failures
// return an error; callers substitute DataFallback.
func (r *DataResearcher) Research(ctx context.Context, question string) (string, error) {
	results, err := r.search.Search(ctx, question+" statistics data")
	if err != nil {
		return "", fmt.Errorf("searching supporting data: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no search results for data query")
	}

	findings, err := r.llm.Generate(ctx, llm.Request{
		System: dataSystemPrompt,
		Prompt: fmt.Sprintf("Question: %s\n\nSearch results:\n%s",
			question, formatResults(results)),
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("summarizing data research: %w", err)
	}
	return findings, nil
}

// DataFallback is the findings text used when data research fails. It tells
// the drafter explicitly that no figures are available so none get invented.
func DataFallback() string {
	return "No research data available. Do not cite specific figures or statistics; " +
		"rely on the executive's perspective and experience instead."
}
