package memory

import (
	"sync"

	"github.com/presswire-ai/presswire/internal/llm"
)

// Turn is one question/comment exchange within a session.
type Turn struct {
	Question string
	Comment  string
	tokens   int
}

// Message is a materialized conversation entry, oldest first.
type Message struct {
	Role    string `json:"role"` // "human" or "ai"
	Content string `json:"content"`
}

// SessionBuffer holds the recent turns of one session, bounded by a token
// budget rather than a message count. Safe for concurrent use.
type SessionBuffer struct {
	mu        sync.Mutex
	maxTokens int
	turns     []Turn
	tokens    int
}

func newSessionBuffer(maxTokens int) *SessionBuffer {
	return &SessionBuffer{maxTokens: maxTokens}
}

// Append adds a turn and evicts oldest turns (FIFO, whole turns) until the
// running token estimate is back under budget.
func (b *SessionBuffer) Append(question, comment string) {
	t := Turn{
		Question: question,
		Comment:  comment,
		tokens:   llm.EstimateTokens(question) + llm.EstimateTokens(comment),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, t)
	b.tokens += t.tokens

	for b.tokens > b.maxTokens && len(b.turns) > 0 {
		b.tokens -= b.turns[0].tokens
		b.turns = b.turns[1:]
	}
}

// Messages returns the buffer as alternating human/ai messages, oldest first.
func (b *SessionBuffer) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := make([]Message, 0, len(b.turns)*2)
	for _, t := range b.turns {
		msgs = append(msgs,
			Message{Role: "human", Content: t.Question},
			Message{Role: "ai", Content: t.Comment},
		)
	}
	return msgs
}

// TokenCount returns the current estimated token total.
func (b *SessionBuffer) TokenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}
