package storage

import (
	"context"
	"fmt"

	"exambank/internal/models"

	"github.com/google/uuid"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// CreateOrFetch inserts the document, deduplicating on the unique title.
// Concurrent batches racing on the same title converge on one row: the
// insert is ON CONFLICT DO NOTHING and the loser fetches the winner's id.
// Returns the stored document and whether a row already existed.
func (r *DocumentRepo) CreateOrFetch(ctx context.Context, doc models.Document) (models.Document, bool, error) {
	if doc.DocumentID == "" {
		doc.DocumentID = uuid.NewString()
	}
	tag, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (document_id, title, category, source_organization, year, source_url, processed, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (title) DO NOTHING`,
		doc.DocumentID, doc.Title, doc.Category, doc.SourceOrganization, doc.Year, doc.SourceURL, doc.Processed, doc.Metadata,
	)
	if err != nil {
		return models.Document{}, false, fmt.Errorf("insert document: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return doc, false, nil
	}
	existing, err := r.GetByTitle(ctx, doc.Title)
	if err != nil {
		return models.Document{}, false, fmt.Errorf("fetch existing document %q: %w", doc.Title, err)
	}
	return existing, true, nil
}

func (r *DocumentRepo) GetByTitle(ctx context.Context, title string) (models.Document, error) {
	row := r.db.Pool.QueryRow(ctx, `
SELECT document_id, title, category, source_organization, year, COALESCE(source_url, ''), processed, created_at
FROM documents WHERE title = $1`, title)
	var d models.Document
	if err := row.Scan(&d.DocumentID, &d.Title, &d.Category, &d.SourceOrganization, &d.Year, &d.SourceURL, &d.Processed, &d.CreatedAt); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

func (r *DocumentRepo) List(ctx context.Context, limit int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT document_id, title, category, source_organization, year, COALESCE(source_url, ''), processed, created_at
FROM documents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	out := make([]models.Document, 0, limit)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocumentID, &d.Title, &d.Category, &d.SourceOrganization, &d.Year, &d.SourceURL, &d.Processed, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
