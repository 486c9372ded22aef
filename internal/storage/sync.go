package storage

import (
	"context"
	"fmt"

	"exambank/internal/models"
)

// SyncRepo reconciles aggregate state after a batch: counts the three
// tables and self-heals dangling references. Safe to run repeatedly; a
// healthy database is left untouched.
type SyncRepo struct {
	db *DB
}

func NewSyncRepo(db *DB) *SyncRepo {
	return &SyncRepo{db: db}
}

func (r *SyncRepo) Reconcile(ctx context.Context) (models.SyncReport, error) {
	report := models.SyncReport{Fixes: []string{}}

	orphanQuestions, err := r.exec(ctx, `
DELETE FROM questions q WHERE NOT EXISTS (SELECT 1 FROM documents d WHERE d.document_id = q.document_id)`)
	if err != nil {
		return report, fmt.Errorf("heal orphan questions: %w", err)
	}
	if orphanQuestions > 0 {
		report.Fixes = append(report.Fixes, fmt.Sprintf("removed %d questions referencing missing documents", orphanQuestions))
	}

	orphanChunks, err := r.exec(ctx, `
DELETE FROM chunks c WHERE NOT EXISTS (SELECT 1 FROM documents d WHERE d.document_id = c.document_id)`)
	if err != nil {
		return report, fmt.Errorf("heal orphan chunks: %w", err)
	}
	if orphanChunks > 0 {
		report.Fixes = append(report.Fixes, fmt.Sprintf("removed %d chunks referencing missing documents", orphanChunks))
	}

	unmarked, err := r.exec(ctx, `
UPDATE documents d SET processed = true
WHERE d.processed = false
  AND (EXISTS (SELECT 1 FROM questions q WHERE q.document_id = d.document_id)
    OR EXISTS (SELECT 1 FROM chunks c WHERE c.document_id = d.document_id))`)
	if err != nil {
		return report, fmt.Errorf("heal processed flags: %w", err)
	}
	if unmarked > 0 {
		report.Fixes = append(report.Fixes, fmt.Sprintf("marked %d documents with stored content as processed", unmarked))
	}

	row := r.db.Pool.QueryRow(ctx, `
SELECT (SELECT count(*) FROM documents),
       (SELECT count(*) FROM questions),
       (SELECT count(*) FROM chunks)`)
	if err := row.Scan(&report.Documents, &report.Questions, &report.Embeddings); err != nil {
		return report, fmt.Errorf("count tables: %w", err)
	}
	report.Healthy = len(report.Fixes) == 0
	return report, nil
}

func (r *SyncRepo) exec(ctx context.Context, sql string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
