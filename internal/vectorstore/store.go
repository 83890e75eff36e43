// Package vectorstore provides the embedding-backed semantic store consumed
// by the session-memory archive and the RAG collections. Documents live in a
// single pgvector-indexed table partitioned logically by collection name;
// metadata filters are exact-match JSONB containment.
package vectorstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is one stored text with its exact-match metadata tags.
type Document struct {
	ID        uuid.UUID         `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// Scored is a query result ranked by similarity (1.0 = identical).
type Scored struct {
	Document
	Score float64 `json:"score"`
}

// Store is the opaque semantic-store capability. Adds are append-only: the
// core never updates or deletes documents.
//
// A document added in one request is not guaranteed to be visible to a query
// in the same request.
type Store interface {
	Add(ctx context.Context, collection string, docs []Document) error
	Query(ctx context.Context, collection, text string, k int, filter map[string]string) ([]Scored, error)
	Count(ctx context.Context, collection string) (int64, error)
}
