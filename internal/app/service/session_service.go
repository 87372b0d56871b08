package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
	"mathquest/internal/domain/repository"
)

const (
	// sessionCreateAttempts bounds retries on session code collisions.
	sessionCreateAttempts = 10
	recentSubmissionLimit = 10
)

// HintPolicy is the hint allowance a new session starts with.
type HintPolicy struct {
	InitialCredits int
	Cap            int
}

type SessionService struct {
	sessionRepo    repository.SessionRepository
	submissionRepo repository.SubmissionRepository
	rnd            RandomSource
	hints          HintPolicy
	now            func() time.Time
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	submissionRepo repository.SubmissionRepository,
	rnd RandomSource,
	hints HintPolicy,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		submissionRepo: submissionRepo,
		rnd:            rnd,
		hints:          hints,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type JoinSessionResponse struct {
	SessionID      string    `json:"session_id"`
	CorrectCount   int       `json:"correct_count"`
	TotalCount     int       `json:"total_count"`
	Streak         int       `json:"streak"`
	HintCredits    int       `json:"hint_credits"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

type SessionData struct {
	Session           *model.UserSession       `json:"session"`
	RecentSubmissions []model.SubmissionRecord `json:"recent_submissions"`
}

// CreateSession inserts a fresh session under a random code, retrying on
// collisions until the attempt budget runs out.
func (s *SessionService) CreateSession(ctx context.Context) (*model.UserSession, error) {
	for attempt := 1; attempt <= sessionCreateAttempts; attempt++ {
		now := s.now()
		session := &model.UserSession{
			ID:             s.newSessionCode(),
			HintCredits:    s.hints.InitialCredits,
			HintCap:        s.hints.Cap,
			CreatedAt:      now,
			LastAccessedAt: now,
		}
		err := s.sessionRepo.Create(ctx, nil, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("create session: %w: %w", common.ErrPersistence, err)
		}
		log.Printf("WARN: session code %s collided (attempt %d/%d)", session.ID, attempt, sessionCreateAttempts)
	}
	return nil, fmt.Errorf("after %d attempts: %w", sessionCreateAttempts, common.ErrCollisionExhausted)
}

// JoinSession returns the session's counters and the previous access time,
// then records the new access. A failed access update is only logged.
func (s *SessionService) JoinSession(ctx context.Context, rawID string) (*JoinSessionResponse, error) {
	id, err := normalizeSessionID(rawID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Touch(ctx, id, s.now()); err != nil {
		log.Printf("WARN: Failed to update last access for session %s: %v", id, err)
	}

	return &JoinSessionResponse{
		SessionID:      session.ID,
		CorrectCount:   session.CorrectCount,
		TotalCount:     session.TotalCount,
		Streak:         session.Streak,
		HintCredits:    session.HintCredits,
		LastAccessedAt: session.LastAccessedAt,
	}, nil
}

// GetSessionData reads a session and its most recent submissions without side effects.
func (s *SessionService) GetSessionData(ctx context.Context, rawID string) (*SessionData, error) {
	id, err := normalizeSessionID(rawID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.submissionRepo.List(ctx, repository.SubmissionFilter{UserSessionID: &id}, recentSubmissionLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("recent submissions for %s: %w", id, err)
	}

	return &SessionData{Session: session, RecentSubmissions: recent}, nil
}

func (s *SessionService) newSessionCode() string {
	var b strings.Builder
	for range model.SessionIDLength {
		b.WriteByte(model.SessionIDAlphabet[s.rnd.IntN(len(model.SessionIDAlphabet))])
	}
	return b.String()
}

// normalizeSessionID upper-cases id and checks its shape.
func normalizeSessionID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !model.ValidSessionID(id) {
		return "", fmt.Errorf("session id must be %d characters of A-Z or 0-9: %w", model.SessionIDLength, common.ErrValidation)
	}
	return id, nil
}
