package client

import "time"

type Topic struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Session is the scoreboard of a user session as reported by the server.
type Session struct {
	ID             string    `json:"session_id"`
	CorrectCount   int       `json:"correct_count"`
	TotalCount     int       `json:"total_count"`
	Streak         int       `json:"streak"`
	HintCredits    int       `json:"hint_credits"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

type sessionRecord struct {
	ID             string    `json:"id"`
	CorrectCount   int       `json:"correct_count"`
	TotalCount     int       `json:"total_count"`
	Streak         int       `json:"streak"`
	HintCredits    int       `json:"hint_credits"`
	HintCap        int       `json:"hint_cap"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

type SessionData struct {
	Session           Session
	HintCap           int
	RecentSubmissions []SubmissionRecord
}

type ProblemOptions struct {
	Difficulty  string `json:"difficulty,omitempty"`
	Topic       string `json:"topic,omitempty"`
	ProblemType string `json:"problem_type,omitempty"`
}

type Problem struct {
	ID          string  `json:"sessionId"`
	ProblemText string  `json:"problem_text"`
	Topic       *string `json:"topic"`
	Difficulty  string  `json:"difficulty"`
	ProblemType *string `json:"problem_type"`
}

type Hint struct {
	Hint        string `json:"hint"`
	HintCredits int    `json:"hint_credits"`
}

type SubmitRequest struct {
	ProblemID     string  `json:"session_id"`
	UserSessionID *string `json:"user_session_id,omitempty"`
	UserAnswer    float64 `json:"user_answer"`
}

type SubmitResult struct {
	IsCorrect     bool    `json:"is_correct"`
	Feedback      string  `json:"feedback"`
	CorrectAnswer float64 `json:"correct_answer"`
}

type SubmissionProblem struct {
	ID            string  `json:"id"`
	ProblemText   string  `json:"problem_text"`
	CorrectAnswer float64 `json:"correct_answer"`
	Difficulty    string  `json:"difficulty"`
	Topic         *string `json:"topic"`
	ProblemType   *string `json:"problem_type"`
}

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

type HistoryPage struct {
	Submissions []SubmissionRecord `json:"submissions"`
	Pagination  Pagination         `json:"pagination"`
}
