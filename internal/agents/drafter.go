package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/presswire-ai/presswire/internal/llm"
	"github.com/presswire-ai/presswire/internal/memory"
	"github.com/presswire-ai/presswire/internal/profiles"
	"github.com/presswire-ai/presswire/internal/rag"
)

const drafterSystemPrompt = `You write press comments in the voice of a specific executive. You
receive the executive's profile, the journalist's question, research briefings and examples of
prior work. Write the comment itself, nothing else: no preamble, no signature, no quotation
marks around the whole text. Stay strictly within the research data; never invent figures.
Aim for two to four sentences a journalist could quote verbatim.`

// DraftInput carries everything the drafter folds into its prompt. Optional
// slices stay empty when the corresponding subsystem is disabled.
type DraftInput struct {
	Profile        *profiles.Profile
	Question       string
	ArticleExcerpt string
	MediaBriefing  string
	DataFindings   string
	History        []memory.Message
	PastComments   []memory.PastComment
	Augmentation   rag.Bundle
}

// Drafter produces the first version of a comment.
type Drafter struct {
	llm         llm.Client
	temperature float64
}

func NewDrafter(client llm.Client, temperature float64) *Drafter {
	return &Drafter{llm: client, temperature: temperature}
}

// Draft generates a comment. Unlike the researchers, a draft failure is
// terminal for the request: there is nothing to fall back to.
func (d *Drafter) Draft(ctx context.Context, in DraftInput) (string, error) {
	comment, err := d.llm.Generate(ctx, llm.Request{
		System:      drafterSystemPrompt,
		Prompt:      buildDraftPrompt(in),
		Temperature: d.temperature,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("drafting comment: %w", err)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", fmt.Errorf("drafter returned an empty comment")
	}
	return comment, nil
}

func buildDraftPrompt(in DraftInput) string {
	var b strings.Builder

	b.WriteString("Executive profile:\n" + in.Profile.Summary() + "\n")
	if len(in.Profile.TalkingPoints) > 0 {
		b.WriteString("Talking points: " + strings.Join(in.Profile.TalkingPoints, "; ") + "\n")
	}
	if len(in.Profile.Expertise) > 0 {
		b.WriteString("Expertise: " + strings.Join(in.Profile.Expertise, "; ") + "\n")
	}

	b.WriteString("\nJournalist question: " + in.Question + "\n")
	if in.ArticleExcerpt != "" {
		b.WriteString("\nArticle excerpt:\n" + in.ArticleExcerpt + "\n")
	}
	if in.MediaBriefing != "" {
		b.WriteString("\nMedia briefing:\n" + in.MediaBriefing + "\n")
	}
	if in.DataFindings != "" {
		b.WriteString("\nResearch data:\n" + in.DataFindings + "\n")
	}

	if len(in.History) > 0 {
		b.WriteString("\nEarlier in this session:\n")
		for _, m := range in.History {
			role := "Journalist"
			if m.Role == "ai" {
				role = in.Profile.Name
			}
			b.WriteString(role + ": " + m.Content + "\n")
		}
	}

	if len(in.PastComments) > 0 {
		b.WriteString("\nPast comments by this executive on similar questions:\n")
		for _, p := range in.PastComments {
			b.WriteString("Q: " + p.Question + "\nA: " + p.Comment + "\n")
		}
	}

	if in.Augmentation.Enabled {
		writeAugmentation(&b, in.Augmentation)
	}

	b.WriteString("\nWrite the comment now.")
	return b.String()
}

func writeAugmentation(b *strings.Builder, bundle rag.Bundle) {
	if len(bundle.SimilarComments) > 0 {
		b.WriteString("\nSimilar past comments:\n")
		for _, c := range bundle.SimilarComments {
			b.WriteString("Q: " + c.Question + "\nA: " + c.Comment + "\n")
		}
	}
	if len(bundle.MediaKnowledge) > 0 {
		b.WriteString("\nWhat we know about this outlet:\n")
		for _, k := range bundle.MediaKnowledge {
			b.WriteString("- " + k.Content + "\n")
		}
	}
	if len(bundle.Examples) > 0 {
		b.WriteString("\nStyle examples:\n")
		for _, e := range bundle.Examples {
			b.WriteString("- " + e.Content + "\n")
		}
	}
}
