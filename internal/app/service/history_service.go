package service

import (
	"context"
	"fmt"

	"mathquest/internal/common"
	"mathquest/internal/domain/model"
	"mathquest/internal/domain/repository"
)

const (
	DefaultHistoryPageSize = 10
	MaxHistoryPageSize     = 50
)

type HistoryService struct {
	submissionRepo repository.SubmissionRepository
}

func NewHistoryService(submissionRepo repository.SubmissionRepository) *HistoryService {
	return &HistoryService{submissionRepo: submissionRepo}
}

type HistoryPage struct {
	Submissions []model.SubmissionRecord `json:"submissions"`
	Pagination  model.Pagination         `json:"pagination"`
}

// ListSubmissions returns one page of a session's submissions, newest first.
// Pages past the end are empty rather than an error.
func (s *HistoryService) ListSubmissions(ctx context.Context, userSessionID string, page, pageSize int) (*HistoryPage, error) {
	id, err := normalizeSessionID(userSessionID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be at least 1: %w", common.ErrValidation)
	}
	if pageSize < 1 || pageSize > MaxHistoryPageSize {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxHistoryPageSize, common.ErrValidation)
	}

	offset := (page - 1) * pageSize
	records, total, err := s.submissionRepo.List(ctx, repository.SubmissionFilter{UserSessionID: &id}, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", id, err)
	}

	return &HistoryPage{
		Submissions: records,
		Pagination:  model.NewPagination(page, pageSize, total),
	}, nil
}
