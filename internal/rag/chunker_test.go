package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_ShortTextIsSingleChunk(t *testing.T) {
	c := NewChunker(1000, 200)
	chunks := c.Split("A short note about TechCrunch.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short note about TechCrunch.", chunks[0])
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker(1000, 200)
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n  "))
}

func TestChunker_RespectsMaxSize(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("The outlet favors data-driven stories. ", 30)

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
}

func TestChunker_PrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	c := NewChunker(100, 10)

	chunks := c.Split(para1 + "\n\n" + para2)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1, chunks[0])
}

func TestChunker_OverlappingChunksShareText(t *testing.T) {
	c := NewChunker(100, 30)
	words := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	// Every byte of the input must appear in some chunk (no silent loss).
	joined := strings.Join(chunks, " ")
	assert.GreaterOrEqual(t, len(joined), len(text)-1)
}

func TestChunker_NoStallOnUnbreakableText(t *testing.T) {
	// A single unbroken run longer than the chunk size must still terminate.
	c := NewChunker(50, 40)
	chunks := c.Split(strings.Repeat("x", 500))
	assert.Greater(t, len(chunks), 1)
}
