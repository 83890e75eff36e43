package memory

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

// fakeStore is an in-memory vectorstore.Store that ranks by naive word
// overlap, good enough to verify filter and round-trip behavior.
type fakeStore struct {
	mu     sync.Mutex
	docs   map[string][]vectorstore.Document
	addErr error
	qryErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string][]vectorstore.Document)}
}

func (f *fakeStore) Add(_ context.Context, collection string, docs []vectorstore.Document) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[collection] = append(f.docs[collection], docs...)
	return nil
}

func (f *fakeStore) Query(_ context.Context, collection, text string, k int, filter map[string]string) ([]vectorstore.Scored, error) {
	if f.qryErr != nil {
		return nil, f.qryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var results []vectorstore.Scored
	for _, d := range f.docs[collection] {
		matches := true
		for key, want := range filter {
			if d.Metadata[key] != want {
				matches = false
				break
			}
		}
		if !matches {
			continue
		}
		results = append(results, vectorstore.Scored{Document: d, Score: overlap(text, d.Content)})
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (f *fakeStore) Count(_ context.Context, collection string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs[collection])), nil
}

func overlap(query, content string) float64 {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0
	}
	hits := 0
	lower := strings.ToLower(content)
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func enabledManager(t *testing.T, maxTokens int) (*Manager, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	m := NewManager(config.MemoryConfig{Enabled: true, MaxTokens: maxTokens}, store)
	require.True(t, m.Enabled())
	return m, store
}

func TestHistory_OrderedAlternatingTurns(t *testing.T) {
	m, _ := enabledManager(t, 2000)

	m.AppendTurn("s1", "Q1", "A1")
	m.AppendTurn("s1", "Q2", "A2")

	history := m.History("s1")
	require.Len(t, history, 4)
	assert.Equal(t, Message{Role: "human", Content: "Q1"}, history[0])
	assert.Equal(t, Message{Role: "ai", Content: "A1"}, history[1])
	assert.Equal(t, Message{Role: "human", Content: "Q2"}, history[2])
	assert.Equal(t, Message{Role: "ai", Content: "A2"}, history[3])
}

func TestAppendTurn_EvictsOldestUnderTokenBudget(t *testing.T) {
	m, _ := enabledManager(t, 50)

	long := strings.Repeat("growth strategy market outlook ", 10)
	for i := 0; i < 20; i++ {
		m.AppendTurn("s1", fmt.Sprintf("question %d %s", i, long), long)
		assert.LessOrEqual(t, m.Session("s1").TokenCount(), 50)
	}
}

func TestAppendTurn_EvictionIsFIFO(t *testing.T) {
	m, _ := enabledManager(t, 40)

	m.AppendTurn("s1", strings.Repeat("a ", 30), strings.Repeat("b ", 30)) // ~60 tokens, evicted by next
	m.AppendTurn("s1", "newest question", "newest answer")

	history := m.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "newest question", history[0].Content)
}

func TestSessions_AreIsolated(t *testing.T) {
	m, _ := enabledManager(t, 2000)

	m.AppendTurn("s1", "Q1", "A1")
	m.AppendTurn("s2", "Q2", "A2")

	assert.Len(t, m.History("s1"), 2)
	assert.Len(t, m.History("s2"), 2)
	assert.Equal(t, "Q1", m.History("s1")[0].Content)
	assert.Equal(t, "Q2", m.History("s2")[0].Content)
}

func TestClear_DiscardsShortTermOnly(t *testing.T) {
	m, store := enabledManager(t, 2000)
	ctx := context.Background()

	m.AppendTurn("s1", "Q1", "A1")
	m.Archive(ctx, "Jane Doe", "Forbes", "Q1", "A1", nil)

	m.Clear("s1")

	assert.Empty(t, m.History("s1"))
	count, _ := store.Count(ctx, ArchiveCollection)
	assert.EqualValues(t, 1, count)
}

func TestArchive_ThenRetrieveSimilar(t *testing.T) {
	m, _ := enabledManager(t, 2000)
	ctx := context.Background()

	m.Archive(ctx, "Jane Doe", "Forbes", "What is your view on remote work?",
		"Remote work is here to stay.", map[string]string{"topic": "workplace"})
	m.Archive(ctx, "John Smith", "WSJ", "Thoughts on AI regulation?",
		"Regulation must not stifle innovation.", nil)

	results := m.RetrieveSimilar(ctx, "view on remote work", "Jane Doe", "Forbes", 3)
	require.Len(t, results, 1)
	assert.Equal(t, "Jane Doe", results[0].Executive)
	assert.Equal(t, "Forbes", results[0].MediaOutlet)
	assert.Equal(t, "Remote work is here to stay.", results[0].Comment)
	assert.Equal(t, "What is your view on remote work?", results[0].Question)
	assert.NotEmpty(t, results[0].Timestamp)
}

func TestRetrieveSimilar_StoreErrorReturnsEmpty(t *testing.T) {
	m, store := enabledManager(t, 2000)
	store.qryErr = fmt.Errorf("store unavailable")

	results := m.RetrieveSimilar(context.Background(), "anything", "", "", 3)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestArchive_StoreErrorIsSwallowed(t *testing.T) {
	m, store := enabledManager(t, 2000)
	store.addErr = fmt.Errorf("store unavailable")

	// Must not panic or surface the error.
	m.Archive(context.Background(), "Jane Doe", "Forbes", "Q", "A", nil)
}

func TestDisabledManager_AllOperationsAreNoOps(t *testing.T) {
	m := NewManager(config.MemoryConfig{Enabled: false, MaxTokens: 2000}, nil)
	ctx := context.Background()

	assert.False(t, m.Enabled())
	m.AppendTurn("s1", "Q", "A")
	m.Archive(ctx, "Jane", "Forbes", "Q", "A", nil)
	m.Clear("s1")

	assert.Empty(t, m.History("s1"))
	assert.Empty(t, m.RetrieveSimilar(ctx, "Q", "", "", 3))
	assert.Equal(t, Stats{Enabled: false}, m.Stats(ctx))
}

func TestStats_CountsSessionsAndDocuments(t *testing.T) {
	m, _ := enabledManager(t, 2000)
	ctx := context.Background()

	m.AppendTurn("s1", "Q", "A")
	m.AppendTurn("s2", "Q", "A")
	m.Archive(ctx, "Jane", "Forbes", "Q", "A", nil)

	stats := m.Stats(ctx)
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.EqualValues(t, 1, stats.ArchivedDocuments)
}

func TestAppendTurn_ConcurrentSameSession(t *testing.T) {
	m, _ := enabledManager(t, 100000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.AppendTurn("shared", fmt.Sprintf("Q%d", i), fmt.Sprintf("A%d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.History("shared"), 100)
}
