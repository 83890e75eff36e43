package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/profiles"
)

const humanizerSystemPrompt = `You edit press comments so they read like a person said them, not
a model. Remove stock transitions, hedging filler and balanced-on-both-sides padding. Keep every
fact and figure exactly as written. Keep the executive's voice. Return only the edited comment.`

// Humanizer rewrites a draft to strip AI tells. It runs hotter than the
// drafter so the phrasing loosens up.
type Humanizer struct {
	llm         llm.Client
	temperature float64
}

func NewHumanizer(client llm.Client, temperature float64) *Humanizer {
	return &Humanizer{llm: client, temperature: temperature}
}

// Humanize rewrites the draft. On failure callers keep the original draft, so
// the error is informational.
func (h *Humanizer) Humanize(ctx context.Context, p *profiles.Profile, draft string) (string, error) {
	out, err := h.llm.Generate(ctx, llm.Request{
		System:      humanizerSystemPrompt,
		Prompt:      fmt.Sprintf("Executive:\n%s\n\nComment to edit:\n%s", p.Summary(), draft),
		Temperature: h.temperature,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("humanizing comment: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("humanizer returned an empty comment")
	}
	return out, nil
}
