package storage

import (
	"context"
	"fmt"

	"exambank/internal/models"

	"github.com/google/uuid"
)

type ChunkRepo struct {
	db *DB
}

func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Insert stores one embedded chunk. The embedding arrives as a pgvector
// literal; a nil pointer stores the row without a vector (embedding call
// failed, content kept for a later backfill).
func (r *ChunkRepo) Insert(ctx context.Context, c models.Chunk, embedding *string) (string, error) {
	if c.ChunkID == "" {
		c.ChunkID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO chunks (chunk_id, document_id, chunk_index, content, embedding, metadata)
VALUES ($1, $2, $3, $4, CASE WHEN $5::text IS NULL THEN NULL ELSE $5::vector END, $6)`,
		c.ChunkID, c.DocumentID, c.ChunkIndex, c.Content, embedding, c.Metadata,
	)
	if err != nil {
		return "", fmt.Errorf("insert chunk %d: %w", c.ChunkIndex, err)
	}
	return c.ChunkID, nil
}

// DeleteByDocument clears a document's chunk set so a re-ingest does not
// accumulate duplicates.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string, limit int) ([]models.Chunk, error) {
	if limit <= 0 {
		limit = 64
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT chunk_id, document_id, chunk_index, content, created_at
FROM chunks WHERE document_id = $1 ORDER BY chunk_index ASC LIMIT $2`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chunks by document: %w", err)
	}
	defer rows.Close()
	out := make([]models.Chunk, 0, limit)
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}
