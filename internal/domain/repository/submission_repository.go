package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
)

// SubmissionFilter narrows a submission listing. A nil UserSessionID lists every submission.
type SubmissionFilter struct {
	UserSessionID *string
}

type SubmissionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	ExistsForProblem(ctx context.Context, tx *sql.Tx, problemID string) (bool, error)
	List(ctx context.Context, filter SubmissionFilter, limit, offset int) ([]model.SubmissionRecord, int, error)
}

type sqlSubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &sqlSubmissionRepository{db: db}
}

func (r *sqlSubmissionRepository) Create(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, session_id, user_session_id, user_answer, is_correct, feedback_text, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := on(r.db, tx).ExecContext(ctx, query, s.ID, s.SessionID, s.UserSessionID, s.UserAnswer, s.IsCorrect, s.FeedbackText, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("problem %s: %w", s.SessionID, common.ErrAlreadyAnswered)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("submission references a missing problem or session: %w", common.ErrNotFound)
		}
		return fmt.Errorf("sqlSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlSubmissionRepository) ExistsForProblem(ctx context.Context, tx *sql.Tx, problemID string) (bool, error) {
	var n int
	err := on(r.db, tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE session_id = $1`, problemID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlSubmissionRepository.ExistsForProblem: %w", err)
	}
	return n > 0, nil
}

// List returns one page of submissions joined with their problems, newest first, and the total match count.
func (r *sqlSubmissionRepository) List(ctx context.Context, filter SubmissionFilter, limit, offset int) ([]model.SubmissionRecord, int, error) {
	var where strings.Builder
	var args []any
	argID := 1

	if filter.UserSessionID != nil {
		where.WriteString(fmt.Sprintf(" WHERE s.user_session_id = $%d", argID))
		args = append(args, *filter.UserSessionID)
		argID++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM submissions s` + where.String()
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlSubmissionRepository.List count: %w", err)
	}

	query := `SELECT s.id, s.user_answer, s.is_correct, s.feedback_text, s.created_at,
	                 p.id, p.problem_text, p.correct_answer, p.difficulty, p.topic, p.problem_type
	          FROM submissions s
	          JOIN problem_sessions p ON p.id = s.session_id` +
		where.String() +
		fmt.Sprintf(" ORDER BY s.created_at DESC, s.id DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlSubmissionRepository.List query: %w", err)
	}
	defer rows.Close()

	records := []model.SubmissionRecord{}
	for rows.Next() {
		var rec model.SubmissionRecord
		var topic, problemType sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserAnswer, &rec.IsCorrect, &rec.FeedbackText, &rec.CreatedAt,
			&rec.Problem.ID, &rec.Problem.ProblemText, &rec.Problem.CorrectAnswer, &rec.Problem.Difficulty, &topic, &problemType); err != nil {
			return nil, 0, fmt.Errorf("sqlSubmissionRepository.List scan: %w", err)
		}
		rec.Problem.Topic = nullableString(topic)
		rec.Problem.ProblemType = nullableProblemType(problemType)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlSubmissionRepository.List rows.Err: %w", err)
	}
	return records, total, nil
}
