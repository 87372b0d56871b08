package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
	"mathquest/internal/domain/repository"
	"mathquest/internal/llm"

	"github.com/google/uuid"
)

// answerTolerance is the absolute difference under which an answer counts as correct.
const answerTolerance = 1e-3

const randomChoice = "random"

// ProblemViewCache is an optional read-through cache for problem views.
// Implementations must swallow their own failures.
type ProblemViewCache interface {
	Get(ctx context.Context, problemID string) (*model.ProblemView, bool)
	Set(ctx context.Context, problemID string, view model.ProblemView)
}

type ProblemService struct {
	problemRepo    repository.ProblemRepository
	sessionRepo    repository.SessionRepository
	submissionRepo repository.SubmissionRepository
	generator      llm.Provider
	catalog        *Catalog
	rnd            RandomSource
	cache          ProblemViewCache // nil disables caching
	db             *sql.DB          // For transactions
	now            func() time.Time
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	sessionRepo repository.SessionRepository,
	submissionRepo repository.SubmissionRepository,
	generator llm.Provider,
	catalog *Catalog,
	rnd RandomSource,
	cache ProblemViewCache,
	db *sql.DB,
) *ProblemService {
	return &ProblemService{
		problemRepo:    problemRepo,
		sessionRepo:    sessionRepo,
		submissionRepo: submissionRepo,
		generator:      generator,
		catalog:        catalog,
		rnd:            rnd,
		cache:          cache,
		db:             db,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type GenerateProblemRequest struct {
	Difficulty  string `json:"difficulty"`
	Topic       string `json:"topic"`
	ProblemType string `json:"problem_type"`
}

type GenerateProblemResponse struct {
	SessionID   string             `json:"sessionId"`
	ProblemText string             `json:"problem_text"`
	Topic       *string            `json:"topic"`
	Difficulty  model.Difficulty   `json:"difficulty"`
	ProblemType *model.ProblemType `json:"problem_type"`
}

type HintRequest struct {
	ProblemSessionID string `json:"problem_session_id"`
	UserSessionID    string `json:"user_session_id"`
}

type HintResponse struct {
	Hint        string `json:"hint"`
	HintCredits int    `json:"hint_credits"`
}

type SubmitAnswerRequest struct {
	SessionID     string   `json:"session_id"`
	UserSessionID *string  `json:"user_session_id"`
	UserAnswer    *float64 `json:"user_answer"`
}

type SubmitAnswerResponse struct {
	IsCorrect     bool    `json:"is_correct"`
	Feedback      string  `json:"feedback"`
	CorrectAnswer float64 `json:"correct_answer"`
}

// GenerateProblem asks the generator for a new word problem and stores it.
// Unknown difficulties fall back to medium; an absent or "random" topic or
// operation is drawn from the random source.
func (s *ProblemService) GenerateProblem(ctx context.Context, req GenerateProblemRequest) (*GenerateProblemResponse, error) {
	difficulty := model.Difficulty(strings.ToLower(strings.TrimSpace(req.Difficulty)))
	if !difficulty.Valid() {
		difficulty = model.DifficultyMedium
	}

	op, err := s.resolveProblemType(req.ProblemType)
	if err != nil {
		return nil, err
	}
	topic, err := s.resolveTopic(req.Topic)
	if err != nil {
		return nil, err
	}

	genReq := llm.UserPrompt(tutorSystemPrompt, problemPrompt(difficulty, topic, op), problemMaxTokens)
	genReq.Schema = wordProblemSchema
	genReq.Temperature = 0.9

	resp, err := s.generator.Generate(llm.WithPurpose(ctx, "problem"), genReq)
	if err != nil {
		return nil, generationError("generate problem", err)
	}

	var out generatedProblem
	if err := llm.Decode(wordProblemSchema, resp.Content, &out); err != nil {
		return nil, generationError("decode problem", err)
	}
	out.ProblemText = strings.TrimSpace(out.ProblemText)
	if out.ProblemText == "" {
		return nil, fmt.Errorf("generator returned empty problem text: %w", common.ErrGeneration)
	}

	problem := &model.ProblemSession{
		ID:            uuid.NewString(),
		ProblemText:   out.ProblemText,
		CorrectAnswer: out.FinalAnswer,
		Difficulty:    difficulty,
		ProblemType:   &op,
		CreatedAt:     s.now(),
	}
	if topic != nil {
		problem.Topic = &topic.Key
	}

	if err := s.problemRepo.Create(ctx, nil, problem); err != nil {
		return nil, persistenceError("store problem", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, problem.ID, problem.View())
	}

	return &GenerateProblemResponse{
		SessionID:   problem.ID,
		ProblemText: problem.ProblemText,
		Topic:       problem.Topic,
		Difficulty:  problem.Difficulty,
		ProblemType: problem.ProblemType,
	}, nil
}

// GetProblem returns the display fields of a problem, never its answer.
func (s *ProblemService) GetProblem(ctx context.Context, problemID string) (*model.ProblemView, error) {
	problemID = strings.TrimSpace(problemID)
	if problemID == "" {
		return nil, fmt.Errorf("sessionId is required: %w", common.ErrValidation)
	}

	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, problemID); ok {
			return view, nil
		}
	}

	problem, err := s.problemRepo.FindByID(ctx, nil, problemID)
	if err != nil {
		return nil, err
	}
	view := problem.View()
	if s.cache != nil {
		s.cache.Set(ctx, problemID, view)
	}
	return &view, nil
}

// RequestHint issues at most one hint per problem, paid for with one credit.
// Marking the problem and spending the credit commit together or not at all.
func (s *ProblemService) RequestHint(ctx context.Context, req HintRequest) (*HintResponse, error) {
	problemID := strings.TrimSpace(req.ProblemSessionID)
	if problemID == "" {
		return nil, fmt.Errorf("problem_session_id is required: %w", common.ErrValidation)
	}
	userID, err := normalizeSessionID(req.UserSessionID)
	if err != nil {
		return nil, err
	}

	problem, err := s.problemRepo.FindByID(ctx, nil, problemID)
	if err != nil {
		return nil, err
	}
	if problem.HintsUsed >= 1 {
		return nil, fmt.Errorf("problem %s: %w", problemID, common.ErrHintAlreadyUsed)
	}
	answered, err := s.submissionRepo.ExistsForProblem(ctx, nil, problemID)
	if err != nil {
		return nil, err
	}
	if answered {
		return nil, fmt.Errorf("problem %s is already answered: %w", problemID, common.ErrHintAlreadyUsed)
	}

	user, err := s.sessionRepo.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user.HintCredits <= 0 {
		return nil, fmt.Errorf("session %s: %w", userID, common.ErrNoCredits)
	}

	hint, err := s.generateText(llm.WithPurpose(ctx, "hint"), hintPrompt(problem.ProblemText), hintMaxTokens)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceError("begin hint transaction", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.problemRepo.MarkHintUsed(ctx, tx, problemID); err != nil {
		return nil, persistenceError("mark hint used", err)
	}
	remaining, err := s.sessionRepo.SpendHintCredit(ctx, tx, userID)
	if err != nil {
		return nil, persistenceError("spend hint credit", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistenceError("commit hint", err)
	}

	return &HintResponse{Hint: hint, HintCredits: remaining}, nil
}

// SubmitAnswer judges an answer, asks for feedback and records the outcome.
// A problem accepts exactly one submission.
func (s *ProblemService) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	problemID := strings.TrimSpace(req.SessionID)
	if problemID == "" {
		return nil, fmt.Errorf("session_id is required: %w", common.ErrValidation)
	}
	if req.UserAnswer == nil {
		return nil, fmt.Errorf("user_answer must be a number: %w", common.ErrValidation)
	}
	var userID *string
	if req.UserSessionID != nil && strings.TrimSpace(*req.UserSessionID) != "" {
		id, err := normalizeSessionID(*req.UserSessionID)
		if err != nil {
			return nil, err
		}
		userID = &id
	}

	problem, err := s.problemRepo.FindByID(ctx, nil, problemID)
	if err != nil {
		return nil, err
	}
	answered, err := s.submissionRepo.ExistsForProblem(ctx, nil, problemID)
	if err != nil {
		return nil, err
	}
	if answered {
		return nil, fmt.Errorf("problem %s: %w", problemID, common.ErrAlreadyAnswered)
	}
	if userID != nil {
		if _, err := s.sessionRepo.FindByID(ctx, nil, *userID); err != nil {
			return nil, err
		}
	}

	answer := *req.UserAnswer
	isCorrect := math.Abs(answer-problem.CorrectAnswer) < answerTolerance

	feedback, err := s.generateText(llm.WithPurpose(ctx, "feedback"),
		feedbackPrompt(problem.ProblemText, problem.CorrectAnswer, answer, isCorrect), feedbackMaxTokens)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceError("begin submit transaction", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if userID != nil {
		if _, err := s.sessionRepo.RecordAnswer(ctx, tx, *userID, isCorrect); err != nil {
			return nil, persistenceError("record answer", err)
		}
	}

	submission := &model.Submission{
		ID:            uuid.NewString(),
		SessionID:     problemID,
		UserSessionID: userID,
		UserAnswer:    answer,
		IsCorrect:     isCorrect,
		FeedbackText:  feedback,
		CreatedAt:     s.now(),
	}
	if err := s.submissionRepo.Create(ctx, tx, submission); err != nil {
		return nil, persistenceError("store submission", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistenceError("commit submission", err)
	}

	return &SubmitAnswerResponse{
		IsCorrect:     isCorrect,
		Feedback:      feedback,
		CorrectAnswer: problem.CorrectAnswer,
	}, nil
}

func (s *ProblemService) resolveProblemType(raw string) (model.ProblemType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == randomChoice {
		return pick(s.rnd, model.ProblemTypes), nil
	}
	t := model.ProblemType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown problem_type %q: %w", raw, common.ErrValidation)
	}
	return t, nil
}

// resolveTopic returns nil only when the catalog is empty and no topic was asked for.
func (s *ProblemService) resolveTopic(raw string) (*model.Topic, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, randomChoice) {
		topics := s.catalog.Topics()
		if len(topics) == 0 {
			return nil, nil
		}
		t := pick(s.rnd, topics)
		return &t, nil
	}
	t, ok := s.catalog.Lookup(raw)
	if !ok {
		return nil, fmt.Errorf("unknown topic %q: %w", raw, common.ErrValidation)
	}
	return &t, nil
}

func (s *ProblemService) generateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := s.generator.Generate(ctx, llm.UserPrompt(tutorSystemPrompt, prompt, maxTokens))
	if err != nil {
		return "", generationError(llm.PurposeFrom(ctx), err)
	}
	text := llm.TrimFences(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s: generator returned empty text: %w", llm.PurposeFrom(ctx), common.ErrGeneration)
	}
	return text, nil
}

func generationError(op string, err error) error {
	if errors.Is(err, common.ErrGeneration) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrGeneration, err)
}

// persistenceError keeps business-rule and lookup errors as they are and
// reports everything else as common.ErrPersistence.
func persistenceError(op string, err error) error {
	for _, keep := range []error{common.ErrNotFound, common.ErrNoCredits, common.ErrHintAlreadyUsed, common.ErrAlreadyAnswered} {
		if errors.Is(err, keep) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrPersistence, err)
}
