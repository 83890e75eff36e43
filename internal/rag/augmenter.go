// Package rag assembles auxiliary grounding context for one generation
// request from three independent retrieval collections: past comments,
// media-outlet knowledge, and few-shot examples.
//
// The three collections stay separate because their filter semantics differ:
// comments filter by executive and outlet, knowledge by outlet and
// journalist, examples by category.
package rag

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/vectorstore"
)

// Collection names. CommentCollection is distinct from the memory archive
// and not subject to its eviction policy.
const (
	CommentCollection   = "comment_history"
	KnowledgeCollection = "media_knowledge"
	ExampleCollection   = "examples"
)

// Fixed per-slot retrieval sizes used by Augment.
const (
	augmentCommentsK  = 3
	augmentKnowledgeK = 2
	augmentExamplesK  = 2
)

// SimilarComment is one retrieved past comment.
type SimilarComment struct {
	Question    string  `json:"question"`
	Comment     string  `json:"comment"`
	Executive   string  `json:"executive"`
	MediaOutlet string  `json:"media_outlet"`
	Timestamp   string  `json:"timestamp"`
	Score       float64 `json:"score"`
}

// KnowledgeChunk is one retrieved media-knowledge fragment.
type KnowledgeChunk struct {
	Content     string  `json:"content"`
	MediaOutlet string  `json:"media_outlet"`
	Journalist  string  `json:"journalist"`
	Score       float64 `json:"score"`
}

// Example is one retrieved few-shot example.
type Example struct {
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Bundle is the transient per-request augmentation result. RetrievalCounts
// always equal the lengths of the corresponding lists.
type Bundle struct {
	Enabled         bool             `json:"enabled"`
	SimilarComments []SimilarComment `json:"similar_comments"`
	MediaKnowledge  []KnowledgeChunk `json:"media_knowledge"`
	Examples        []Example        `json:"examples"`
	RetrievalCounts RetrievalCounts  `json:"retrieval_counts"`
}

type RetrievalCounts struct {
	SimilarComments int `json:"similar_comments"`
	MediaKnowledge  int `json:"media_knowledge"`
	Examples        int `json:"examples"`
}

// Stats reports per-collection document counts.
type Stats struct {
	Enabled        bool  `json:"enabled"`
	Comments       int64 `json:"comments"`
	MediaKnowledge int64 `json:"media_knowledge"`
	Examples       int64 `json:"examples"`
	TotalDocuments int64 `json:"total_documents"`
}

// Augmenter orchestrates storage and retrieval across the three collections.
type Augmenter struct {
	enabled bool
	topK    int
	store   vectorstore.Store
	chunker *Chunker
}

// NewAugmenter builds the RAG subsystem. A nil store yields a disabled
// augmenter whose every method is a safe no-op.
func NewAugmenter(cfg config.RAGConfig, store vectorstore.Store) *Augmenter {
	a := &Augmenter{
		enabled: cfg.Enabled && store != nil,
		topK:    cfg.TopK,
		store:   store,
		chunker: NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
	}
	if !a.enabled {
		reason := "ENABLE_RAG=false"
		if cfg.Enabled {
			reason = "embedding store unavailable"
		}
		slog.Info("rag disabled", "reason", reason)
		return a
	}
	slog.Info("rag initialized", "chunk_size", cfg.ChunkSize, "top_k", cfg.TopK)
	return a
}

// Enabled reports whether the subsystem is active.
func (a *Augmenter) Enabled() bool { return a.enabled }

// StoreComment records a successful comment in the comment-history
// collection. Best-effort: errors are logged, never returned.
func (a *Augmenter) StoreComment(ctx context.Context, executive, mediaOutlet, question, comment string, metadata map[string]string) {
	if !a.enabled {
		return
	}

	md := map[string]string{
		"executive":    executive,
		"media_outlet": mediaOutlet,
		"question":     question,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"type":         "comment",
	}
	for k, v := range metadata {
		md[k] = v
	}

	doc := vectorstore.Document{
		Content:  "Question: " + question + "\n\nComment: " + comment,
		Metadata: md,
	}
	if err := a.store.Add(ctx, CommentCollection, []vectorstore.Document{doc}); err != nil {
		slog.Error("comment storage failed", "executive", executive, "error", err)
		return
	}
	slog.Debug("comment stored", "executive", executive, "media_outlet", mediaOutlet)
}

// StoreMediaKnowledge chunks and stores outlet/journalist background text.
func (a *Augmenter) StoreMediaKnowledge(ctx context.Context, mediaOutlet, journalist, knowledge string, metadata map[string]string) {
	if !a.enabled {
		return
	}

	md := map[string]string{
		"media_outlet": mediaOutlet,
		"journalist":   journalistOrUnknown(journalist),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"type":         "media_knowledge",
	}
	for k, v := range metadata {
		md[k] = v
	}

	chunks := a.chunker.Split(knowledge)
	docs := make([]vectorstore.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, vectorstore.Document{Content: chunk, Metadata: md})
	}

	if err := a.store.Add(ctx, KnowledgeCollection, docs); err != nil {
		slog.Error("media knowledge storage failed", "media_outlet", mediaOutlet, "error", err)
		return
	}
	slog.Debug("media knowledge stored", "media_outlet", mediaOutlet, "chunks", len(docs))
}

// StoreExample records one few-shot example verbatim under a category.
func (a *Augmenter) StoreExample(ctx context.Context, text, category string, metadata map[string]string) {
	if !a.enabled {
		return
	}

	md := map[string]string{
		"category":  category,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"type":      "example",
	}
	for k, v := range metadata {
		md[k] = v
	}

	doc := vectorstore.Document{Content: text, Metadata: md}
	if err := a.store.Add(ctx, ExampleCollection, []vectorstore.Document{doc}); err != nil {
		slog.Error("example storage failed", "category", category, "error", err)
		return
	}
	slog.Debug("example stored", "category", category)
}

// FindSimilarComments retrieves past comments semantically close to question,
// exact-filtered by executive/outlet when provided. k <= 0 uses the
// configured default.
func (a *Augmenter) FindSimilarComments(ctx context.Context, question, executive, mediaOutlet string, k int) ([]SimilarComment, error) {
	if !a.enabled {
		return []SimilarComment{}, nil
	}
	if k <= 0 {
		k = a.topK
	}

	filter := map[string]string{}
	if executive != "" {
		filter["executive"] = executive
	}
	if mediaOutlet != "" {
		filter["media_outlet"] = mediaOutlet
	}

	results, err := a.store.Query(ctx, CommentCollection, question, k, filter)
	if err != nil {
		return nil, err
	}

	comments := make([]SimilarComment, 0, len(results))
	for _, r := range results {
		comments = append(comments, SimilarComment{
			Question:    r.Metadata["question"],
			Comment:     commentBody(r.Content),
			Executive:   r.Metadata["executive"],
			MediaOutlet: r.Metadata["media_outlet"],
			Timestamp:   r.Metadata["timestamp"],
			Score:       r.Score,
		})
	}
	return comments, nil
}

// RetrieveMediaKnowledge retrieves background chunks about an outlet and
// optionally a journalist. The query text is outlet plus journalist; the
// filter is exact-match on both when the journalist is present.
func (a *Augmenter) RetrieveMediaKnowledge(ctx context.Context, mediaOutlet, journalist string, k int) ([]KnowledgeChunk, error) {
	if !a.enabled {
		return []KnowledgeChunk{}, nil
	}
	if k <= 0 {
		k = a.topK
	}

	query := mediaOutlet
	filter := map[string]string{"media_outlet": mediaOutlet}
	if journalist != "" {
		query += " " + journalist
		filter["journalist"] = journalist
	}

	results, err := a.store.Query(ctx, KnowledgeCollection, query, k, filter)
	if err != nil {
		return nil, err
	}

	chunks := make([]KnowledgeChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, KnowledgeChunk{
			Content:     r.Content,
			MediaOutlet: r.Metadata["media_outlet"],
			Journalist:  r.Metadata["journalist"],
			Score:       r.Score,
		})
	}
	return chunks, nil
}

// RetrieveExamples retrieves few-shot examples relevant to query, optionally
// exact-filtered by category.
func (a *Augmenter) RetrieveExamples(ctx context.Context, query, category string, k int) ([]Example, error) {
	if !a.enabled {
		return []Example{}, nil
	}
	if k <= 0 {
		k = a.topK
	}

	filter := map[string]string{}
	if category != "" {
		filter["category"] = category
	}

	results, err := a.store.Query(ctx, ExampleCollection, query, k, filter)
	if err != nil {
		return nil, err
	}

	examples := make([]Example, 0, len(results))
	for _, r := range results {
		examples = append(examples, Example{
			Content:  r.Content,
			Category: r.Metadata["category"],
			Score:    r.Score,
		})
	}
	return examples, nil
}

// Augment runs the three retrievals concurrently and assembles the bundle.
// A failing source degrades to an empty list; the bundle is still returned
// with Enabled=true. Only a disabled subsystem yields Enabled=false.
func (a *Augmenter) Augment(ctx context.Context, question, executive, mediaOutlet, journalist string) Bundle {
	if !a.enabled {
		return Bundle{Enabled: false}
	}

	bundle := Bundle{
		Enabled:         true,
		SimilarComments: []SimilarComment{},
		MediaKnowledge:  []KnowledgeChunk{},
		Examples:        []Example{},
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		comments, err := a.FindSimilarComments(ctx, question, executive, "", augmentCommentsK)
		if err != nil {
			slog.Warn("similar comments retrieval failed", "error", err)
			return
		}
		bundle.SimilarComments = comments
	}()

	go func() {
		defer wg.Done()
		knowledge, err := a.RetrieveMediaKnowledge(ctx, mediaOutlet, journalist, augmentKnowledgeK)
		if err != nil {
			slog.Warn("media knowledge retrieval failed", "media_outlet", mediaOutlet, "error", err)
			return
		}
		bundle.MediaKnowledge = knowledge
	}()

	go func() {
		defer wg.Done()
		examples, err := a.RetrieveExamples(ctx, question, "", augmentExamplesK)
		if err != nil {
			slog.Warn("examples retrieval failed", "error", err)
			return
		}
		bundle.Examples = examples
	}()

	wg.Wait()

	bundle.RetrievalCounts = RetrievalCounts{
		SimilarComments: len(bundle.SimilarComments),
		MediaKnowledge:  len(bundle.MediaKnowledge),
		Examples:        len(bundle.Examples),
	}

	slog.Debug("context augmented",
		"similar_comments", bundle.RetrievalCounts.SimilarComments,
		"media_knowledge", bundle.RetrievalCounts.MediaKnowledge,
		"examples", bundle.RetrievalCounts.Examples,
	)
	return bundle
}

// Stats returns per-collection document counts.
func (a *Augmenter) Stats(ctx context.Context) Stats {
	if !a.enabled {
		return Stats{Enabled: false}
	}

	stats := Stats{Enabled: true}
	for _, c := range []struct {
		name string
		dst  *int64
	}{
		{CommentCollection, &stats.Comments},
		{KnowledgeCollection, &stats.MediaKnowledge},
		{ExampleCollection, &stats.Examples},
	} {
		count, err := a.store.Count(ctx, c.name)
		if err != nil {
			slog.Error("rag stats retrieval failed", "collection", c.name, "error", err)
			continue
		}
		*c.dst = count
	}
	stats.TotalDocuments = stats.Comments + stats.MediaKnowledge + stats.Examples
	return stats
}

func commentBody(content string) string {
	if _, after, found := strings.Cut(content, "Comment: "); found {
		return after
	}
	return content
}

func journalistOrUnknown(journalist string) string {
	if journalist == "" {
		return "unknown"
	}
	return journalist
}
