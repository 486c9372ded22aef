package vector

import (
	"context"
	"fmt"
	"strings"

	"exambank/internal/models"

	"github.com/jackc/pgx/v5"
)

type Searcher struct {
	q Queryer
}

type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func NewSearcher(q Queryer) *Searcher {
	return &Searcher{q: q}
}

// SearchChunks returns the topK chunks nearest to the query vector by
// cosine distance, joined with their document's provenance.
func (s *Searcher) SearchChunks(ctx context.Context, queryVec []float32, topK int) ([]models.ChunkResult, error) {
	if topK <= 0 {
		topK = 8
	}
	rows, err := s.q.Query(ctx, `
SELECT c.document_id,
       d.title,
       d.source_organization,
       c.chunk_id,
       LEFT(c.content, 420) AS snippet,
       1 - (c.embedding <=> $1::vector) AS score,
       c.content
FROM chunks c
JOIN documents d ON d.document_id = c.document_id
WHERE c.embedding IS NOT NULL
ORDER BY c.embedding <=> $1::vector
LIMIT $2`, ToLiteral(queryVec), topK)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	results := make([]models.ChunkResult, 0, topK)
	for rows.Next() {
		var r models.ChunkResult
		if err := rows.Scan(&r.DocumentID, &r.Title, &r.Organization, &r.ChunkID, &r.Snippet, &r.Score, &r.Content); err != nil {
			return nil, fmt.Errorf("scan chunk result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return results, nil
}

// ToLiteral renders a float vector as a pgvector input literal.
func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
