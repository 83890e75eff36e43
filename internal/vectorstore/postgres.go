package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/presswire-ai/presswire/internal/embedding"
)

// PostgresStore implements Store using pgx + pgvector with a Voyage embedder.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder embedding.Client
}

// NewPostgresStore creates a new vector store backed by the documents table.
func NewPostgresStore(pool *pgxpool.Pool, embedder embedding.Client) *PostgresStore {
	return &PostgresStore{pool: pool, embedder: embedder}
}

func (s *PostgresStore) Add(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d documents: %w", len(docs), err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(docs))
	}

	batch := &pgx.Batch{}
	for i, d := range docs {
		id := d.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		metadata, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}
		batch.Queue(
			`INSERT INTO documents (id, collection, content, embedding, metadata)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, collection, d.Content, pgvector.NewVector(embeddings[i]), metadata,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range docs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting document into %s: %w", collection, err)
		}
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection, text string, k int, filter map[string]string) ([]Scored, error) {
	queryVec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}

	// @> gives exact-match containment on every provided metadata key;
	// an empty filter marshals to {} and matches everything.
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, metadata, created_at,
		        1 - (embedding <=> $1) AS score
		 FROM documents
		 WHERE collection = $2
		   AND metadata @> $3
		 ORDER BY embedding <=> $1
		 LIMIT $4`,
		pgvector.NewVector(queryVec), collection, filterJSON, k,
	)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}
	defer rows.Close()

	var results []Scored
	for rows.Next() {
		var (
			doc      Document
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadata, &doc.CreatedAt, &score); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
		results = append(results, Scored{Document: doc, Score: score})
	}
	return results, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = $1`, collection,
	).Scan(&count)
	return count, err
}
