package rag

import "strings"

// chunkSeparators are tried in order, preferring paragraph over sentence over
// word boundaries.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits long text into overlapping chunks on natural boundaries.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with a fixed chunk size and overlap (both in
// bytes, overlap < size).
func NewChunker(size, overlap int) *Chunker {
	return &Chunker{size: size, overlap: overlap}
}

// Split returns chunks of at most the configured size. Boundaries land on the
// coarsest separator that fits; consecutive chunks share the configured
// overlap so no context is lost at a cut.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := c.boundaryBefore(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - c.overlap
		if next <= start {
			next = cut // overlap would stall progress; advance without it
		}
		start = next
	}
	return chunks
}

// boundaryBefore finds the rightmost natural separator in (start, end],
// falling back to a hard cut at end when the window has no separator.
func (c *Chunker) boundaryBefore(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return end
}
