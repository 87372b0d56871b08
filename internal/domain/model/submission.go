package model

import "time"

type Submission struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"` // ProblemSession
	UserSessionID *string   `json:"user_session_id,omitempty"`
	UserAnswer    float64   `json:"user_answer"`
	IsCorrect     bool      `json:"is_correct"`
	FeedbackText  string    `json:"feedback_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubmissionProblem carries the problem fields shown next to a past submission.
// The answer is included because the problem is already answered.
type SubmissionProblem struct {
	ID            string       `json:"id"`
	ProblemText   string       `json:"problem_text"`
	CorrectAnswer float64      `json:"correct_answer"`
	Difficulty    Difficulty   `json:"difficulty"`
	Topic         *string      `json:"topic"`
	ProblemType   *ProblemType `json:"problem_type"`
}

// SubmissionRecord is a submission joined with its problem for history views.
type SubmissionRecord struct {
	ID           string            `json:"id"`
	UserAnswer   float64           `json:"user_answer"`
	IsCorrect    bool              `json:"is_correct"`
	FeedbackText string            `json:"feedback_text"`
	CreatedAt    time.Time         `json:"created_at"`
	Problem      SubmissionProblem `json:"problem"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination computes the pagination block for page (1-based) of size limit over total items.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}
