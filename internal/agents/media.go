// Package agents holds the LLM workers that research, draft and polish PR
// comments. Researchers degrade to placeholder briefings on failure; only the
// drafter is allowed to fail a request.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/search"
)

const mediaSystemPrompt = `You are a media research analyst. Given raw search results about a
journalist and their outlet, write a short briefing for an executive about to comment for them:
the outlet's audience and editorial slant, the journalist's beat and recent coverage, and what
angle of comment is likely to land. Be concrete and brief. If the results are thin, say what is
known and stop; never invent coverage.`

// MediaResearcher builds a briefing on the outlet and journalist behind a
// request.
type MediaResearcher struct {
	llm    llm.Client
	search search.Client
}

func NewMediaResearcher(client llm.Client, s search.Client) *MediaResearcher {
	return &MediaResearcher{llm: client, search: s}
}

// Research searches for the journalist and outlet, then summarizes the hits
// into a briefing. Any failure returns an error; callers substitute
// MediaFallback.
func (r *MediaResearcher) Research(ctx context.Context, outlet, journalist string) (string, error) {
	query := strings.TrimSpace(outlet + " " + journalist)
	if query == "" {
		return "", fmt.Errorf("no outlet or journalist to research")
	}

	results, err := r.search.Search(ctx, query+" journalist coverage")
	if err != nil {
		return "", fmt.Errorf("searching media background: %w", err)
	}

	news, err := r.search.News(ctx, query)
	if err == nil {
		results = append(results, news...)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no search results for %q", query)
	}

	briefing, err := r.llm.Generate(ctx, llm.Request{
		System: mediaSystemPrompt,
		Prompt: fmt.Sprintf("Outlet: %s\nJournalist: %s\n\nSearch results:\n%s",
			outlet, journalist, formatResults(results)),
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("summarizing media research: %w", err)
	}
	return briefing, nil
}

// MediaFallback is the briefing used when media research fails.
func MediaFallback(outlet string) string {
	if outlet == "" {
		outlet = "the outlet"
	}
	return fmt.Sprintf("Media research unavailable. Assume %s has a general business "+
		"audience; keep the comment accessible and avoid insider jargon.", outlet)
}

func formatResults(results []search.Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}
