package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
	"mathquest/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProblem_StoresProblem(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.gen.AddResponse(llm.MockJSON(map[string]any{"problem_text": "A tank holds 2.5 l. How many ml?", "final_answer": 2500}))

	resp, err := env.problemSvc.GenerateProblem(ctx, GenerateProblemRequest{Difficulty: "hard", Topic: "decimals", ProblemType: "multiplication"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.DifficultyHard, resp.Difficulty)
	require.NotNil(t, resp.Topic)
	assert.Equal(t, "decimals", *resp.Topic)
	require.NotNil(t, resp.ProblemType)
	assert.Equal(t, model.ProblemTypeMultiplication, *resp.ProblemType)

	stored, err := env.problems.FindByID(ctx, nil, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, stored.CorrectAnswer)
	assert.Zero(t, stored.HintsUsed)

	require.Equal(t, 1, env.gen.CallCount())
	call := env.gen.Calls[0]
	require.NotNil(t, call.Schema)
	assert.Contains(t, call.Messages[0].Content, "hard level")
	assert.Contains(t, call.Messages[0].Content, "Decimals")
	assert.Contains(t, call.Messages[0].Content, "multiplication")
}

func TestGenerateProblem_DefaultsAndRandomChoices(t *testing.T) {
	env := newTestEnv(t, fixedRand{v: 2})
	env.gen.AddResponse(llm.MockJSON(map[string]any{"problem_text": "x", "final_answer": 1}))

	resp, err := env.problemSvc.GenerateProblem(context.Background(), GenerateProblemRequest{Difficulty: "impossible", Topic: "random", ProblemType: "random"})
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyMedium, resp.Difficulty)
	assert.Equal(t, model.ProblemTypes[2], *resp.ProblemType)
	assert.Equal(t, DefaultCatalog().Topics()[2].Key, *resp.Topic)
}

func TestGenerateProblem_ValidationBeforeGeneration(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.problemSvc.GenerateProblem(ctx, GenerateProblemRequest{ProblemType: "exponentiation"})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.GenerateProblem(ctx, GenerateProblemRequest{Topic: "calculus"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, env.gen.CallCount())
}

func TestGenerateProblem_GenerationFailures(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: errors.New("upstream down")}},
		{"not json", llm.MockText("Sure! Here is a problem about apples.")},
		{"answer not a number", llm.MockJSON(map[string]any{"problem_text": "x", "final_answer": "five"})},
		{"missing text", llm.MockJSON(map[string]any{"final_answer": 5})},
		{"blank text", llm.MockJSON(map[string]any{"problem_text": "   ", "final_answer": 5})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.gen.AddResponse(tt.resp)

			_, err := env.problemSvc.GenerateProblem(context.Background(), GenerateProblemRequest{})
			assert.ErrorIs(t, err, common.ErrGeneration)
			assert.Equal(t, 500, common.HTTPStatusFromError(err))
		})
	}
}

func TestGenerateProblem_AcceptsFencedJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	env.gen.AddResponse(llm.MockText("```json\n{\"problem_text\": \"1/2 of 8?\", \"final_answer\": 4}\n```"))

	resp, err := env.problemSvc.GenerateProblem(context.Background(), GenerateProblemRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1/2 of 8?", resp.ProblemText)
}

func TestGetProblem(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	id := env.newProblem(t, 7)

	view, err := env.problemSvc.GetProblem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mei Ling has some marbles. How many?", view.ProblemText)
	assert.Equal(t, model.DifficultyEasy, view.Difficulty)

	_, err = env.problemSvc.GetProblem(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.GetProblem(ctx, "no-such-problem")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetProblem_UsesCache(t *testing.T) {
	env := newTestEnv(t, nil)
	cache := newMemoryViewCache()
	env.problemSvc.cache = cache

	id := env.newProblem(t, 3)
	require.Contains(t, cache.views, id, "generate warms the cache")

	_, err := env.problemSvc.GetProblem(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestSubmitAnswer_ScoringSequence(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)

	for _, answer := range []float64{1, 10, 10} { // wrong, right, right
		env.submit(t, env.newProblem(t, 10), s.ID, answer)
	}

	stored, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CorrectCount)
	assert.Equal(t, 3, stored.TotalCount)
	assert.Equal(t, 2, stored.Streak)
}

func TestSubmitAnswer_Tolerance(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.newSession(t)

	near := env.submit(t, env.newProblem(t, 2.5), s.ID, 2.5009)
	assert.True(t, near.IsCorrect)
	assert.Equal(t, 2.5, near.CorrectAnswer)

	far := env.submit(t, env.newProblem(t, 2.5), s.ID, 2.502)
	assert.False(t, far.IsCorrect)
	assert.Equal(t, "Well tried!", far.Feedback)
}

func TestSubmitAnswer_FeedbackPromptReflectsOutcome(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.newSession(t)

	env.submit(t, env.newProblem(t, 4), s.ID, 5)
	last := env.gen.Calls[len(env.gen.Calls)-1]
	assert.Contains(t, last.Messages[0].Content, "The correct answer is: 4")
	assert.Contains(t, last.Messages[0].Content, "The student answered: 5")
	assert.Contains(t, last.Messages[0].Content, "got it wrong")
}

func TestSubmitAnswer_AnonymousSubmission(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	id := env.newProblem(t, 9)
	answer := 9.0
	env.gen.AddResponse(llm.MockText("Correct!"))

	resp, err := env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserAnswer: &answer})
	require.NoError(t, err)
	assert.True(t, resp.IsCorrect)

	exists, err := env.submissions.ExistsForProblem(ctx, nil, id)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSubmitAnswer_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 9)
	answer := 9.0
	bad := "abc"
	ghost := "GHOST"
	calls := env.gen.CallCount()

	_, err := env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{UserAnswer: &answer})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserSessionID: &bad, UserAnswer: &answer})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: "missing", UserAnswer: &answer})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserSessionID: &ghost, UserAnswer: &answer})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, calls, env.gen.CallCount(), "no generator call for rejected input")

	env.submit(t, id, s.ID, 9)
	_, err = env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserSessionID: &s.ID, UserAnswer: &answer})
	assert.ErrorIs(t, err, common.ErrAlreadyAnswered)

	stored, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalCount, "second submission must not count")
}

func TestSubmitAnswer_GenerationFailureLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 9)
	answer := 9.0
	env.gen.AddResponse(llm.MockResponse{Err: errors.New("timeout")})

	_, err := env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserSessionID: &s.ID, UserAnswer: &answer})
	assert.ErrorIs(t, err, common.ErrGeneration)

	stored, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TotalCount)
	exists, err := env.submissions.ExistsForProblem(ctx, nil, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmitAnswer_ConcurrentDoubleSubmitCountsOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 9)
	for range 5 {
		env.gen.AddResponse(llm.MockText("ok"))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer := 9.0
			_, err := env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserSessionID: &s.ID, UserAnswer: &answer})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, common.ErrAlreadyAnswered)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalCount)
}

func TestRequestHint(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 12)
	env.gen.AddResponse(llm.MockText("```\nThink about equal groups.\n```"))

	resp, err := env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
	require.NoError(t, err)
	assert.Equal(t, "Think about equal groups.", resp.Hint)
	assert.Equal(t, 2, resp.HintCredits)

	problem, err := env.problems.FindByID(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, 1, problem.HintsUsed)

	// A second hint for the same problem is refused even with credits left.
	calls := env.gen.CallCount()
	_, err = env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrHintAlreadyUsed)
	assert.Equal(t, 400, common.HTTPStatusFromError(err))
	assert.Equal(t, calls, env.gen.CallCount())

	user, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, user.HintCredits)
}

func TestRequestHint_NoCreditsChangesNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.sessionSvc.hints = HintPolicy{InitialCredits: 0, Cap: 5}
	s := env.newSession(t)
	id := env.newProblem(t, 12)

	_, err := env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrNoCredits)
	assert.Equal(t, 400, common.HTTPStatusFromError(err))

	user, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Zero(t, user.HintCredits)
	problem, err := env.problems.FindByID(ctx, nil, id)
	require.NoError(t, err)
	assert.Zero(t, problem.HintsUsed)
}

func TestRequestHint_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 12)

	_, err := env.problemSvc.RequestHint(ctx, HintRequest{UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: "TOOLONG"})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: "missing", UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: "NONE0"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	env.submit(t, id, s.ID, 12)
	_, err = env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrHintAlreadyUsed, "answered problems take no hints")
}

func TestRequestHint_GenerationFailureSpendsNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 12)
	env.gen.AddResponse(llm.MockResponse{Err: errors.New("quota")})

	_, err := env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrGeneration)

	user, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, user.HintCredits)
	problem, err := env.problems.FindByID(ctx, nil, id)
	require.NoError(t, err)
	assert.Zero(t, problem.HintsUsed)
}

func TestRequestHint_ConcurrentRequestsSpendOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 12)
	for range 4 {
		env.gen.AddResponse(llm.MockText("hint"))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, common.ErrHintAlreadyUsed)
	}
	assert.Equal(t, 1, succeeded)

	user, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, user.HintCredits)
}

// answerDuringHint answers the problem while the hint is being generated.
type answerDuringHint struct {
	*llm.MockProvider
	answer func()
}

func (p *answerDuringHint) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if llm.PurposeFrom(ctx) == "hint" && p.answer != nil {
		answer := p.answer
		p.answer = nil
		answer()
	}
	return p.MockProvider.Generate(ctx, req)
}

func TestRequestHint_AnsweredDuringGenerationSpendsNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	s := env.newSession(t)
	id := env.newProblem(t, 12)

	env.gen.AddResponse(llm.MockText("Well tried!"))
	env.gen.AddResponse(llm.MockText("Try grouping."))
	gen := &answerDuringHint{MockProvider: env.gen}
	gen.answer = func() {
		v := 12.0
		_, err := env.problemSvc.SubmitAnswer(ctx, SubmitAnswerRequest{SessionID: id, UserSessionID: &s.ID, UserAnswer: &v})
		require.NoError(t, err)
	}
	env.problemSvc.generator = gen

	_, err := env.problemSvc.RequestHint(ctx, HintRequest{ProblemSessionID: id, UserSessionID: s.ID})
	assert.ErrorIs(t, err, common.ErrHintAlreadyUsed)

	user, err := env.sessions.FindByID(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, user.HintCredits)
	assert.Equal(t, 1, user.TotalCount)
	problem, err := env.problems.FindByID(ctx, nil, id)
	require.NoError(t, err)
	assert.Zero(t, problem.HintsUsed)
}
