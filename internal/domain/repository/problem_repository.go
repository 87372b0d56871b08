package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
)

type ProblemRepository interface {
	Create(ctx context.Context, tx *sql.Tx, problem *model.ProblemSession) error
	FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.ProblemSession, error)
	MarkHintUsed(ctx context.Context, tx *sql.Tx, id string) error
}

type sqlProblemRepository struct {
	db *sql.DB
}

func NewProblemRepository(db *sql.DB) ProblemRepository {
	return &sqlProblemRepository{db: db}
}

func (r *sqlProblemRepository) Create(ctx context.Context, tx *sql.Tx, p *model.ProblemSession) error {
	query := `INSERT INTO problem_sessions (id, problem_text, correct_answer, difficulty, topic, problem_type, hints_used, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := on(r.db, tx).ExecContext(ctx, query, p.ID, p.ProblemText, p.CorrectAnswer, string(p.Difficulty), p.Topic, problemTypeArg(p.ProblemType), p.HintsUsed, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("problem %s already exists: %w", p.ID, common.ErrConflict)
		}
		return fmt.Errorf("sqlProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlProblemRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.ProblemSession, error) {
	query := `SELECT id, problem_text, correct_answer, difficulty, topic, problem_type, hints_used, created_at
	          FROM problem_sessions WHERE id = $1`

	p := &model.ProblemSession{}
	var topic, problemType sql.NullString
	err := on(r.db, tx).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.ProblemText, &p.CorrectAnswer, &p.Difficulty, &topic, &problemType, &p.HintsUsed, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("problem %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("sqlProblemRepository.FindByID: %w", err)
	}
	p.Topic = nullableString(topic)
	p.ProblemType = nullableProblemType(problemType)
	return p, nil
}

// MarkHintUsed flips hints_used from 0 to 1 while the problem is unanswered.
// The conditional update makes the check-and-set atomic: of two concurrent
// callers only one sees a row change, and a submission committed first wins.
func (r *sqlProblemRepository) MarkHintUsed(ctx context.Context, tx *sql.Tx, id string) error {
	query := `UPDATE problem_sessions SET hints_used = 1
	          WHERE id = $1 AND hints_used = 0
	            AND NOT EXISTS (SELECT 1 FROM submissions WHERE session_id = $2)`

	res, err := on(r.db, tx).ExecContext(ctx, query, id, id)
	if err != nil {
		return fmt.Errorf("sqlProblemRepository.MarkHintUsed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlProblemRepository.MarkHintUsed rows: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, ferr := r.FindByID(ctx, tx, id); ferr != nil {
		return ferr
	}
	return fmt.Errorf("problem %s: %w", id, common.ErrHintAlreadyUsed)
}

func problemTypeArg(t *model.ProblemType) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableProblemType(ns sql.NullString) *model.ProblemType {
	if !ns.Valid {
		return nil
	}
	t := model.ProblemType(ns.String)
	return &t
}
