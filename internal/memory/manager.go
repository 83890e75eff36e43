// Package memory maintains per-session conversational context (short-term,
// token-bounded, in-process) and a durable cross-session archive of
// quality-gated past comments (long-term, vector store).
//
// Every operation degrades to a no-op or empty result when the subsystem is
// disabled, so callers invoke memory hooks unconditionally.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/vectorstore"
)

// ArchiveCollection is the long-term archive, distinct from the RAG comment
// history collection.
const ArchiveCollection = "comment_archive"

// PastComment is one retrieved long-term archive entry.
type PastComment struct {
	Question      string  `json:"question"`
	Comment       string  `json:"comment"`
	Executive     string  `json:"executive"`
	MediaOutlet   string  `json:"media_outlet"`
	Timestamp     string  `json:"timestamp"`
	CommentLength int     `json:"comment_length"`
	Score         float64 `json:"score"`
}

// Stats reports memory system counters.
type Stats struct {
	Enabled           bool  `json:"enabled"`
	ActiveSessions    int   `json:"active_sessions"`
	ArchivedDocuments int64 `json:"archived_documents"`
}

// Manager owns the session map and the long-term archive handle. Construct
// once per process and inject; the instance is the scope.
type Manager struct {
	enabled   bool
	maxTokens int
	store     vectorstore.Store

	mu       sync.Mutex
	sessions map[string]*SessionBuffer
}

// NewManager builds the memory subsystem. A nil store (missing embedding
// credentials) or a disabled config yields a Manager whose every method is a
// safe no-op.
func NewManager(cfg config.MemoryConfig, store vectorstore.Store) *Manager {
	m := &Manager{
		enabled:   cfg.Enabled && store != nil,
		maxTokens: cfg.MaxTokens,
		sessions:  make(map[string]*SessionBuffer),
		store:     store,
	}
	if !m.enabled {
		reason := "ENABLE_MEMORY=false"
		if cfg.Enabled {
			reason = "embedding store unavailable"
		}
		slog.Info("memory disabled", "reason", reason)
		return m
	}
	slog.Info("memory initialized", "max_tokens", cfg.MaxTokens)
	return m
}

// Enabled reports whether the subsystem is active.
func (m *Manager) Enabled() bool { return m.enabled }

// Session lazily creates and returns the buffer for a session id.
func (m *Manager) Session(sessionID string) *SessionBuffer {
	if !m.enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	buf, ok := m.sessions[sessionID]
	if !ok {
		buf = newSessionBuffer(m.maxTokens)
		m.sessions[sessionID] = buf
		slog.Debug("session created", "session_id", sessionID)
	}
	return buf
}

// AppendTurn records a question/comment exchange in short-term memory.
// Memory faults never abort comment generation: failures are logged only.
func (m *Manager) AppendTurn(sessionID, question, comment string) {
	if !m.enabled {
		return
	}
	m.Session(sessionID).Append(question, comment)
	slog.Debug("short-term memory saved",
		"session_id", sessionID,
		"question_length", len(question),
		"comment_length", len(comment),
	)
}

// History materializes the short-term buffer as alternating human/ai
// messages, oldest first.
func (m *Manager) History(sessionID string) []Message {
	if !m.enabled {
		return []Message{}
	}
	return m.Session(sessionID).Messages()
}

// Clear discards the short-term buffer for a session. The long-term archive
// is untouched.
func (m *Manager) Clear(sessionID string) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	slog.Debug("session cleared", "session_id", sessionID)
}

// Archive writes one immutable entry to the long-term store. Best-effort:
// store errors are logged, never returned.
func (m *Manager) Archive(ctx context.Context, executive, mediaOutlet, question, comment string, metadata map[string]string) {
	if !m.enabled {
		return
	}

	doc := vectorstore.Document{
		Content:  archiveText(question, comment),
		Metadata: archiveMetadata(executive, mediaOutlet, question, comment, metadata),
	}

	if err := m.store.Add(ctx, ArchiveCollection, []vectorstore.Document{doc}); err != nil {
		slog.Error("long-term memory save failed", "executive", executive, "error", err)
		return
	}
	slog.Debug("long-term memory saved",
		"executive", executive,
		"media_outlet", mediaOutlet,
		"comment_length", len(comment),
	)
}

// RetrieveSimilar queries the archive by semantic similarity to question,
// optionally filtered by executive and/or outlet (exact match). Returns an
// empty slice on any store error.
func (m *Manager) RetrieveSimilar(ctx context.Context, question, executive, mediaOutlet string, k int) []PastComment {
	if !m.enabled {
		return []PastComment{}
	}

	filter := map[string]string{}
	if executive != "" {
		filter["executive"] = executive
	}
	if mediaOutlet != "" {
		filter["media_outlet"] = mediaOutlet
	}

	results, err := m.store.Query(ctx, ArchiveCollection, question, k, filter)
	if err != nil {
		slog.Error("similar comments retrieval failed", "error", err)
		return []PastComment{}
	}

	comments := make([]PastComment, 0, len(results))
	for _, r := range results {
		length, _ := strconv.Atoi(r.Metadata["comment_length"])
		comments = append(comments, PastComment{
			Question:      r.Metadata["question"],
			Comment:       commentFromArchiveText(r.Content),
			Executive:     r.Metadata["executive"],
			MediaOutlet:   r.Metadata["media_outlet"],
			Timestamp:     r.Metadata["timestamp"],
			CommentLength: length,
			Score:         r.Score,
		})
	}
	return comments
}

// Stats returns session and archive counters.
func (m *Manager) Stats(ctx context.Context) Stats {
	if !m.enabled {
		return Stats{Enabled: false}
	}

	m.mu.Lock()
	active := len(m.sessions)
	m.mu.Unlock()

	count, err := m.store.Count(ctx, ArchiveCollection)
	if err != nil {
		slog.Error("memory stats retrieval failed", "error", err)
	}
	return Stats{Enabled: true, ActiveSessions: active, ArchivedDocuments: count}
}

func archiveText(question, comment string) string {
	return fmt.Sprintf("Question: %s\n\nComment: %s", question, comment)
}

func commentFromArchiveText(content string) string {
	if _, after, found := strings.Cut(content, "Comment: "); found {
		return after
	}
	return content
}

func archiveMetadata(executive, mediaOutlet, question, comment string, extra map[string]string) map[string]string {
	md := map[string]string{
		"executive":      executive,
		"media_outlet":   mediaOutlet,
		"question":       question,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"comment_length": strconv.Itoa(len(comment)),
	}
	for k, v := range extra {
		md[k] = v
	}
	return md
}
