package app

import (
	"context"
	"errors"

	"prochecka/internal/domain"
)

// ProgressService tracks the per-day diet and exercise checklists.
type ProgressService struct {
	repo domain.ProgressRepository
}

// NewProgressService creates a ProgressService backed by the given repository.
func NewProgressService(repo domain.ProgressRepository) *ProgressService {
	return &ProgressService{repo: repo}
}

// GetDay returns the completed item ids for the given local day.
func (s *ProgressService) GetDay(ctx context.Context, userID int64, kind domain.ProgressKind, localDay string) ([]string, error) {
	if !kind.Valid() {
		return nil, errors.New(`kind must be "diet" or "exercise"`)
	}
	return s.repo.GetProgress(ctx, userID, kind, localDay)
}

// SetDay replaces the completed item ids for the given local day.
func (s *ProgressService) SetDay(ctx context.Context, userID int64, kind domain.ProgressKind, localDay string, completedIDs []string) error {
	if !kind.Valid() {
		return errors.New(`kind must be "diet" or "exercise"`)
	}
	if completedIDs == nil {
		completedIDs = []string{}
	}
	return s.repo.SetProgress(ctx, userID, kind, localDay, completedIDs)
}
