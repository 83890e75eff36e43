package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/vectorstore"
)

// collectionStore is an in-memory vectorstore.Store with per-collection
// error injection.
type collectionStore struct {
	mu      sync.Mutex
	docs    map[string][]vectorstore.Document
	failing map[string]error
}

func newCollectionStore() *collectionStore {
	return &collectionStore{
		docs:    make(map[string][]vectorstore.Document),
		failing: make(map[string]error),
	}
}

func (s *collectionStore) Add(_ context.Context, collection string, docs []vectorstore.Document) error {
	if err := s.failing[collection]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[collection] = append(s.docs[collection], docs...)
	return nil
}

func (s *collectionStore) Query(_ context.Context, collection, _ string, k int, filter map[string]string) ([]vectorstore.Scored, error) {
	if err := s.failing[collection]; err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []vectorstore.Scored
	for _, d := range s.docs[collection] {
		match := true
		for key, want := range filter {
			if d.Metadata[key] != want {
				match = false
				break
			}
		}
		if match {
			results = append(results, vectorstore.Scored{Document: d, Score: 0.9})
		}
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (s *collectionStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs[collection])), nil
}

func ragConfig() config.RAGConfig {
	return config.RAGConfig{Enabled: true, TopK: 3, ChunkSize: 1000, ChunkOverlap: 200}
}

func TestStoreComment_ThenFindSimilar(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(ragConfig(), store)
	ctx := context.Background()

	a.StoreComment(ctx, "Jane Doe", "Forbes", "View on AI?", "AI changes everything.", nil)
	a.StoreComment(ctx, "John Smith", "WSJ", "View on rates?", "Rates will hold.", nil)

	comments, err := a.FindSimilarComments(ctx, "View on AI?", "Jane Doe", "", 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "AI changes everything.", comments[0].Comment)
	assert.Equal(t, "View on AI?", comments[0].Question)
	assert.Equal(t, "Forbes", comments[0].MediaOutlet)
}

func TestStoreMediaKnowledge_ChunksLongText(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(config.RAGConfig{Enabled: true, TopK: 3, ChunkSize: 100, ChunkOverlap: 20}, store)
	ctx := context.Background()

	long := strings.Repeat("TechCrunch covers startups and venture capital. ", 20)
	a.StoreMediaKnowledge(ctx, "TechCrunch", "Alex Rivera", long, nil)

	count, _ := store.Count(ctx, KnowledgeCollection)
	assert.Greater(t, count, int64(1))

	chunks, err := a.RetrieveMediaKnowledge(ctx, "TechCrunch", "Alex Rivera", 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "TechCrunch", chunks[0].MediaOutlet)
	assert.Equal(t, "Alex Rivera", chunks[0].Journalist)
}

func TestStoreMediaKnowledge_UnknownJournalist(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(ragConfig(), store)
	ctx := context.Background()

	a.StoreMediaKnowledge(ctx, "Forbes", "", "Forbes favors contrarian takes.", nil)

	// No journalist filter: the chunk is still retrievable by outlet alone.
	chunks, err := a.RetrieveMediaKnowledge(ctx, "Forbes", "", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "unknown", chunks[0].Journalist)
}

func TestRetrieveExamples_CategoryFilter(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(ragConfig(), store)
	ctx := context.Background()

	a.StoreExample(ctx, "We are thrilled to launch...", "product_launch", nil)
	a.StoreExample(ctx, "We take this seriously...", "crisis_response", nil)

	examples, err := a.RetrieveExamples(ctx, "launch", "product_launch", 5)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "product_launch", examples[0].Category)
}

func TestAugment_AssemblesAllThreeSlots(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(ragConfig(), store)
	ctx := context.Background()

	a.StoreComment(ctx, "Jane Doe", "Forbes", "View on AI?", "AI changes everything.", nil)
	a.StoreMediaKnowledge(ctx, "Forbes", "", "Forbes favors contrarian takes.", nil)
	a.StoreExample(ctx, "We are thrilled...", "product_launch", nil)

	bundle := a.Augment(ctx, "View on AI?", "Jane Doe", "Forbes", "")
	assert.True(t, bundle.Enabled)
	assert.Len(t, bundle.SimilarComments, 1)
	assert.Len(t, bundle.MediaKnowledge, 1)
	assert.Len(t, bundle.Examples, 1)
	assert.Equal(t, RetrievalCounts{SimilarComments: 1, MediaKnowledge: 1, Examples: 1}, bundle.RetrievalCounts)
}

func TestAugment_PartialFailureDegradesOneSlot(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(ragConfig(), store)
	ctx := context.Background()

	a.StoreComment(ctx, "Jane Doe", "Forbes", "View on AI?", "AI changes everything.", nil)
	a.StoreExample(ctx, "We are thrilled...", "product_launch", nil)
	store.failing[KnowledgeCollection] = fmt.Errorf("collection unavailable")

	bundle := a.Augment(ctx, "View on AI?", "Jane Doe", "Forbes", "")
	assert.True(t, bundle.Enabled)
	assert.Len(t, bundle.SimilarComments, 1)
	assert.Empty(t, bundle.MediaKnowledge)
	assert.NotNil(t, bundle.MediaKnowledge)
	assert.Len(t, bundle.Examples, 1)
	assert.Equal(t, 0, bundle.RetrievalCounts.MediaKnowledge)
}

func TestAugment_DisabledSubsystem(t *testing.T) {
	a := NewAugmenter(config.RAGConfig{Enabled: false}, nil)

	bundle := a.Augment(context.Background(), "Q", "Jane", "Forbes", "")
	assert.False(t, bundle.Enabled)
	assert.False(t, a.Enabled())
}

func TestDisabledAugmenter_StorageAndRetrievalAreNoOps(t *testing.T) {
	a := NewAugmenter(config.RAGConfig{Enabled: true}, nil) // no store
	ctx := context.Background()

	a.StoreComment(ctx, "Jane", "Forbes", "Q", "A", nil)
	a.StoreExample(ctx, "text", "cat", nil)

	comments, err := a.FindSimilarComments(ctx, "Q", "", "", 3)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Equal(t, Stats{Enabled: false}, a.Stats(ctx))
}

func TestStats_CountsPerCollection(t *testing.T) {
	store := newCollectionStore()
	a := NewAugmenter(ragConfig(), store)
	ctx := context.Background()

	a.StoreComment(ctx, "Jane", "Forbes", "Q1", "A1", nil)
	a.StoreComment(ctx, "Jane", "Forbes", "Q2", "A2", nil)
	a.StoreExample(ctx, "text", "cat", nil)

	stats := a.Stats(ctx)
	assert.True(t, stats.Enabled)
	assert.EqualValues(t, 2, stats.Comments)
	assert.EqualValues(t, 0, stats.MediaKnowledge)
	assert.EqualValues(t, 1, stats.Examples)
	assert.EqualValues(t, 3, stats.TotalDocuments)
}
