package storage

import (
	"context"
	"fmt"
)

// UsageRecord is one model or embedding invocation, for cost accounting.
type UsageRecord struct {
	CallID     string
	Operation  string
	DocumentID string
	Provider   string
	Model      string
	Status     string
	ErrorType  string
	InputChars int
}

type UsageRepo struct {
	db *DB
}

func NewUsageRepo(db *DB) *UsageRepo {
	return &UsageRepo{db: db}
}

func (r *UsageRepo) Insert(ctx context.Context, rec UsageRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO usage_log (call_id, operation, document_id, provider, model, status, error_type, input_chars)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8)`,
		rec.CallID, rec.Operation, rec.DocumentID, rec.Provider, rec.Model, rec.Status, rec.ErrorType, rec.InputChars,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}
