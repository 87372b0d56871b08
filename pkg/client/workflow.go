package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoSession = errors.New("no active session; start or join one first")
	ErrNoProblem = errors.New("no problem in progress; ask for a new one first")
	ErrHintUsed  = errors.New("a hint was already shown for this problem")
)

// DefaultHistoryLimit is the page size Workflow.History asks for.
const DefaultHistoryLimit = 10

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notifier receives user-facing messages from a Workflow.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind NoticeKind, message string)

func (f NotifierFunc) Notify(kind NoticeKind, message string) { f(kind, message) }

// Deps are the collaborators a Workflow reports to and remembers through.
// Both are optional.
type Deps struct {
	Notifier Notifier
	Cache    *Cache
}

// Workflow is the client-side play state: the active session, the problem in
// progress and whether its hint was used. A failed step leaves the previous
// state untouched. It is not safe for concurrent use.
type Workflow struct {
	client   *Client
	notifier Notifier
	cache    *Cache

	session  *Session
	problem  *Problem
	hintUsed bool
	hint     string
}

func NewWorkflow(c *Client, deps Deps) *Workflow {
	n := deps.Notifier
	if n == nil {
		n = NotifierFunc(func(NoticeKind, string) {})
	}
	return &Workflow{client: c, notifier: n, cache: deps.Cache}
}

// Session returns a copy of the active session.
func (w *Workflow) Session() (Session, bool) {
	if w.session == nil {
		return Session{}, false
	}
	return *w.session, true
}

// Problem returns a copy of the problem in progress.
func (w *Workflow) Problem() (Problem, bool) {
	if w.problem == nil {
		return Problem{}, false
	}
	return *w.problem, true
}

// ShownHint returns the hint shown for the problem in progress, if any.
func (w *Workflow) ShownHint() (string, bool) {
	return w.hint, w.hintUsed
}

// Restore reloads cached ids and keeps only those the server still knows.
// A cached problem already answered in the session is dropped.
func (w *Workflow) Restore(ctx context.Context) error {
	if w.cache == nil {
		return nil
	}
	state := w.cache.Load()
	dirty := false

	if state.SessionID != "" {
		s, err := w.client.JoinSession(ctx, state.SessionID)
		switch {
		case err == nil:
			w.session = s
		case isStale(err):
			state.SessionID = ""
			dirty = true
		default:
			return w.fail("restore session", err)
		}
	}

	if state.ProblemID != "" {
		p, err := w.client.GetProblem(ctx, state.ProblemID)
		switch {
		case err == nil:
			w.problem = p
		case isStale(err):
			state.ProblemID = ""
			dirty = true
		default:
			return w.fail("restore problem", err)
		}
	}

	if w.session != nil && w.problem != nil && w.answeredInSession(ctx, w.problem.ID) {
		w.problem = nil
		dirty = true
	}

	if dirty {
		w.save()
	}
	if w.session != nil {
		w.notifier.Notify(NoticeInfo, fmt.Sprintf("Welcome back to session %s.", w.session.ID))
	}
	return nil
}

func (w *Workflow) StartSession(ctx context.Context) (*Session, error) {
	s, err := w.client.CreateSession(ctx)
	if err != nil {
		return nil, w.fail("start session", err)
	}
	w.session = s
	w.save()
	w.notifier.Notify(NoticeSuccess, fmt.Sprintf("Session %s created. Share the code to continue elsewhere.", s.ID))
	return s, nil
}

func (w *Workflow) JoinSession(ctx context.Context, id string) (*Session, error) {
	s, err := w.client.JoinSession(ctx, id)
	if err != nil {
		return nil, w.fail("join session", err)
	}
	w.session = s
	w.save()
	w.notifier.Notify(NoticeSuccess, fmt.Sprintf("Joined session %s.", s.ID))
	return s, nil
}

func (w *Workflow) NewProblem(ctx context.Context, opts ProblemOptions) (*Problem, error) {
	p, err := w.client.GenerateProblem(ctx, opts)
	if err != nil {
		return nil, w.fail("new problem", err)
	}
	w.problem = p
	w.hintUsed, w.hint = false, ""
	w.save()
	return p, nil
}

// Hint asks for the single hint of the problem in progress and refreshes the
// session's hint credits.
func (w *Workflow) Hint(ctx context.Context) (string, error) {
	if w.session == nil {
		return "", w.fail("hint", ErrNoSession)
	}
	if w.problem == nil {
		return "", w.fail("hint", ErrNoProblem)
	}
	if w.hintUsed {
		return "", w.fail("hint", ErrHintUsed)
	}

	h, err := w.client.RequestHint(ctx, w.problem.ID, w.session.ID)
	if err != nil {
		if HasCode(err, "hint_already_used") {
			w.hintUsed = true
		}
		return "", w.fail("hint", err)
	}
	w.hintUsed, w.hint = true, h.Hint
	w.session.HintCredits = h.HintCredits
	return h.Hint, nil
}

// Submit answers the problem in progress. The problem is only cleared once the
// server accepted the answer; session stats are then refreshed.
func (w *Workflow) Submit(ctx context.Context, answer float64) (*SubmitResult, error) {
	if w.problem == nil {
		return nil, w.fail("submit", ErrNoProblem)
	}

	req := SubmitRequest{ProblemID: w.problem.ID, UserAnswer: answer}
	if w.session != nil {
		id := w.session.ID
		req.UserSessionID = &id
	}

	res, err := w.client.SubmitAnswer(ctx, req)
	if err != nil {
		if HasCode(err, "already_answered") {
			w.clearProblem()
		}
		return nil, w.fail("submit", err)
	}
	w.clearProblem()

	if w.session != nil {
		if data, err := w.client.SessionData(ctx, w.session.ID); err != nil {
			w.notifier.Notify(NoticeError, "Answer saved, but the scoreboard could not be refreshed: "+message(err))
		} else {
			s := data.Session
			w.session = &s
		}
	}
	if res.IsCorrect {
		w.notifier.Notify(NoticeSuccess, "Correct!")
	} else {
		w.notifier.Notify(NoticeInfo, "Not quite.")
	}
	return res, nil
}

func (w *Workflow) History(ctx context.Context, page int) (*HistoryPage, error) {
	if w.session == nil {
		return nil, w.fail("history", ErrNoSession)
	}
	if page < 1 {
		page = 1
	}
	h, err := w.client.History(ctx, w.session.ID, page, DefaultHistoryLimit)
	if err != nil {
		return nil, w.fail("history", err)
	}
	return h, nil
}

// answeredInSession reports whether the session's recent submissions include
// problemID, e.g. because someone sharing the code answered it. A failed
// lookup keeps the problem; the server still rejects a second answer.
func (w *Workflow) answeredInSession(ctx context.Context, problemID string) bool {
	data, err := w.client.SessionData(ctx, w.session.ID)
	if err != nil {
		return false
	}
	s := data.Session
	w.session = &s
	for _, rec := range data.RecentSubmissions {
		if rec.Problem.ID == problemID {
			return true
		}
	}
	return false
}

func (w *Workflow) clearProblem() {
	w.problem = nil
	w.hintUsed, w.hint = false, ""
	w.save()
}

// save mirrors the current ids into the cache. Cache failures only notify.
func (w *Workflow) save() {
	if w.cache == nil {
		return
	}
	prev := w.cache.Load()
	var s State
	if w.session != nil {
		s.SessionID = w.session.ID
		if prev.SessionID == s.SessionID {
			s.SessionSavedAt = prev.SessionSavedAt
		}
	}
	if w.problem != nil {
		s.ProblemID = w.problem.ID
		if prev.ProblemID == s.ProblemID {
			s.ProblemSavedAt = prev.ProblemSavedAt
		}
	}
	if err := w.cache.Save(s); err != nil {
		w.notifier.Notify(NoticeError, "Could not remember progress locally: "+err.Error())
	}
}

func (w *Workflow) fail(op string, err error) error {
	w.notifier.Notify(NoticeError, message(err))
	return fmt.Errorf("%s: %w", op, err)
}

func message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// isStale reports whether the server no longer recognises a cached id.
func isStale(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusBadRequest
}
