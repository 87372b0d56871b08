package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
)

// Counters is the score state returned by an atomic counter update.
type Counters struct {
	CorrectCount int
	TotalCount   int
	Streak       int
}

type SessionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, session *model.UserSession) error
	FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.UserSession, error)
	Touch(ctx context.Context, id string, at time.Time) error
	RecordAnswer(ctx context.Context, tx *sql.Tx, id string, isCorrect bool) (*Counters, error)
	SpendHintCredit(ctx context.Context, tx *sql.Tx, id string) (int, error)
}

type sqlSessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sqlSessionRepository{db: db}
}

func (r *sqlSessionRepository) Create(ctx context.Context, tx *sql.Tx, s *model.UserSession) error {
	query := `INSERT INTO user_sessions (id, correct_count, total_count, streak, hint_credits, hint_cap, created_at, last_accessed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := on(r.db, tx).ExecContext(ctx, query, s.ID, s.CorrectCount, s.TotalCount, s.Streak, s.HintCredits, s.HintCap, s.CreatedAt, s.LastAccessedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session %s already exists: %w", s.ID, common.ErrConflict)
		}
		return fmt.Errorf("sqlSessionRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlSessionRepository) FindByID(ctx context.Context, tx *sql.Tx, id string) (*model.UserSession, error) {
	query := `SELECT id, correct_count, total_count, streak, hint_credits, hint_cap, created_at, last_accessed_at
	          FROM user_sessions WHERE id = $1`

	s := &model.UserSession{}
	err := on(r.db, tx).QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.CorrectCount, &s.TotalCount, &s.Streak, &s.HintCredits, &s.HintCap, &s.CreatedAt, &s.LastAccessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user session %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("sqlSessionRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *sqlSessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user_sessions SET last_accessed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("sqlSessionRepository.Touch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user session %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// RecordAnswer applies one answer to the counters in a single UPDATE so concurrent
// submissions on a shared session cannot lose increments.
func (r *sqlSessionRepository) RecordAnswer(ctx context.Context, tx *sql.Tx, id string, isCorrect bool) (*Counters, error) {
	query := `UPDATE user_sessions SET
	              total_count = total_count + 1,
	              correct_count = correct_count + CASE WHEN $1 THEN 1 ELSE 0 END,
	              streak = CASE WHEN $2 THEN streak + 1 ELSE 0 END
	          WHERE id = $3
	          RETURNING correct_count, total_count, streak`

	c := &Counters{}
	err := on(r.db, tx).QueryRowContext(ctx, query, isCorrect, isCorrect, id).Scan(&c.CorrectCount, &c.TotalCount, &c.Streak)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user session %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("sqlSessionRepository.RecordAnswer: %w", err)
	}
	return c, nil
}

// SpendHintCredit decrements hint_credits if any remain and returns the new balance.
func (r *sqlSessionRepository) SpendHintCredit(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	query := `UPDATE user_sessions SET hint_credits = hint_credits - 1
	          WHERE id = $1 AND hint_credits > 0
	          RETURNING hint_credits`

	var remaining int
	err := on(r.db, tx).QueryRowContext(ctx, query, id).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sqlSessionRepository.SpendHintCredit: %w", err)
	}

	// No row updated: either the session is gone or it has no credits left.
	if _, ferr := r.FindByID(ctx, tx, id); ferr != nil {
		return 0, ferr
	}
	return 0, fmt.Errorf("user session %s: %w", id, common.ErrNoCredits)
}
