package storage

import (
	"context"
	"fmt"

	"exambank/internal/models"

	"github.com/google/uuid"
)

type QuestionRepo struct {
	db *DB
}

func NewQuestionRepo(db *DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

func (r *QuestionRepo) Insert(ctx context.Context, q models.QuestionRecord) (string, error) {
	if q.QuestionID == "" {
		q.QuestionID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO questions (question_id, document_id, stem, option_a, option_b, option_c, option_d, option_e, correct_option, explanation, subject_area)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)`,
		q.QuestionID, q.DocumentID, q.Stem, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE, q.CorrectOption, q.Explanation, q.SubjectArea,
	)
	if err != nil {
		return "", fmt.Errorf("insert question: %w", err)
	}
	return q.QuestionID, nil
}

// Update overwrites the mutable fields of a stored question in place,
// keyed by id. Used only by the repair pass.
func (r *QuestionRepo) Update(ctx context.Context, q models.QuestionRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE questions
SET stem = $2, option_a = $3, option_b = $4, option_c = $5, option_d = $6,
    option_e = NULLIF($7, ''), explanation = $8, subject_area = $9, updated_at = now()
WHERE question_id = $1`,
		q.QuestionID, q.Stem, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE, q.Explanation, q.SubjectArea,
	)
	if err != nil {
		return fmt.Errorf("update question %s: %w", q.QuestionID, err)
	}
	return nil
}

func (r *QuestionRepo) StemExists(ctx context.Context, stem string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM questions WHERE stem = $1)`, stem).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check stem exists: %w", err)
	}
	return exists, nil
}

func (r *QuestionRepo) ListByDocument(ctx context.Context, documentID string) ([]models.QuestionRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT question_id, document_id, stem, option_a, option_b, option_c, option_d,
       COALESCE(option_e, ''), correct_option, explanation, subject_area, created_at, updated_at
FROM questions WHERE document_id = $1 ORDER BY created_at ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list questions by document: %w", err)
	}
	defer rows.Close()
	out := make([]models.QuestionRecord, 0, 16)
	for rows.Next() {
		var q models.QuestionRecord
		if err := rows.Scan(&q.QuestionID, &q.DocumentID, &q.Stem, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.OptionE, &q.CorrectOption, &q.Explanation, &q.SubjectArea, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}
