package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mathquest/internal/domain/model"
	"mathquest/internal/domain/repository"
	"mathquest/internal/llm"
	"mathquest/internal/platform/config"
	"mathquest/internal/platform/database"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db          *sql.DB
	sessions    repository.SessionRepository
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	gen         *llm.MockProvider
	sessionSvc  *SessionService
	problemSvc  *ProblemService
	historySvc  *HistoryService
}

func newTestEnv(t *testing.T, rnd RandomSource) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, config.DriverSQLite))

	if rnd == nil {
		rnd = NewRandomSource(1, 2)
	}
	env := &testEnv{
		db:          db,
		sessions:    repository.NewSessionRepository(db),
		problems:    repository.NewProblemRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		gen:         llm.NewMockProvider(),
	}
	env.sessionSvc = NewSessionService(env.sessions, env.submissions, rnd, HintPolicy{InitialCredits: 3, Cap: 5})
	env.problemSvc = NewProblemService(env.problems, env.sessions, env.submissions, env.gen, DefaultCatalog(), rnd, nil, db)
	env.historySvc = NewHistoryService(env.submissions)

	clock := newStepClock()
	env.sessionSvc.now = clock.Now
	env.problemSvc.now = clock.Now
	return env
}

// stepClock advances one second per reading so stored rows order deterministically.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Now().UTC().Add(-time.Hour).Truncate(time.Second)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (e *testEnv) newSession(t *testing.T) *model.UserSession {
	t.Helper()
	s, err := e.sessionSvc.CreateSession(context.Background())
	require.NoError(t, err)
	return s
}

// newProblem generates a problem whose answer is answer.
func (e *testEnv) newProblem(t *testing.T, answer float64) string {
	t.Helper()
	e.gen.AddResponse(llm.MockJSON(map[string]any{"problem_text": "Mei Ling has some marbles. How many?", "final_answer": answer}))
	resp, err := e.problemSvc.GenerateProblem(context.Background(), GenerateProblemRequest{Difficulty: "easy"})
	require.NoError(t, err)
	return resp.SessionID
}

func (e *testEnv) submit(t *testing.T, problemID, userID string, answer float64) *SubmitAnswerResponse {
	t.Helper()
	e.gen.AddResponse(llm.MockText("Well tried!"))
	resp, err := e.problemSvc.SubmitAnswer(context.Background(), SubmitAnswerRequest{SessionID: problemID, UserSessionID: &userID, UserAnswer: &answer})
	require.NoError(t, err)
	return resp
}

// fixedRand always answers v, clamped to the range asked for.
type fixedRand struct{ v int }

func (f fixedRand) IntN(n int) int { return min(f.v, n-1) }

type memoryViewCache struct {
	mu    sync.Mutex
	views map[string]model.ProblemView
	hits  int
}

func newMemoryViewCache() *memoryViewCache {
	return &memoryViewCache{views: map[string]model.ProblemView{}}
}

func (c *memoryViewCache) Get(_ context.Context, id string) (*model.ProblemView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[id]
	if ok {
		c.hits++
	}
	return &v, ok
}

func (c *memoryViewCache) Set(_ context.Context, id string, v model.ProblemView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[id] = v
}
