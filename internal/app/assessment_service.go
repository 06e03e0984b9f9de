// Package app holds the application services and business logic.
package app

import (
	"context"
	"time"

	"prochecka/internal/domain"

	"github.com/google/uuid"
)

// AssessmentService runs the PIMA assessment and manages the resulting
// action plan for its owner.
type AssessmentService struct {
	plans  domain.ActionPlanRepository
	guests domain.GuestSessionRepository
	now    func() time.Time
}

// NewAssessmentService creates an AssessmentService backed by the given
// repositories.
func NewAssessmentService(plans domain.ActionPlanRepository, guests domain.GuestSessionRepository) *AssessmentService {
	return &AssessmentService{plans: plans, guests: guests, now: time.Now}
}

// Submit validates the 8 inputs, scores them and upserts the owner's action
// plan. One plan per owner: re-running the assessment overwrites it. For
// guest owners the result is also denormalized onto the guest session so a
// later conversion can copy it.
func (s *AssessmentService) Submit(ctx context.Context, owner domain.Owner, inputs domain.HealthInputs) (domain.RiskResult, *domain.ActionPlan, error) {
	if err := inputs.Validate(); err != nil {
		return domain.RiskResult{}, nil, err
	}

	result := domain.Score(inputs)

	plan := domain.ActionPlan{
		RiskScore:   result.RiskScore,
		Factor:      result.TopFactor,
		PlanMessage: result.NudgeMessage,
		Tasks:       NewPlanTasks(result.Tasks),
		UpdatedAt:   s.now(),
	}

	if owner.IsUser() {
		stored, err := s.plans.UpsertPlan(ctx, owner, plan)
		if err != nil {
			return domain.RiskResult{}, nil, err
		}
		return result, stored, nil
	}

	// The session must be live before anything is written, so a bad token
	// cannot leave an orphaned plan behind a not-found error.
	sess, err := s.guests.GetGuestSession(ctx, owner.GuestToken)
	if err != nil {
		return domain.RiskResult{}, nil, err
	}
	if sess == nil || sess.ConvertedToUserID != nil || s.now().After(sess.ExpiresAt) {
		return domain.RiskResult{}, nil, domain.ErrNotFound
	}

	stored, err := s.plans.UpsertPlan(ctx, owner, plan)
	if err != nil {
		return domain.RiskResult{}, nil, err
	}

	data := sess.Data.Merge(domain.AssessmentData{Inputs: &inputs, Result: &result})
	score := result.RiskScore
	if _, err := s.guests.UpdateGuestSession(ctx, owner.GuestToken, data, &score); err != nil {
		return domain.RiskResult{}, nil, err
	}
	return result, stored, nil
}

// GetPlan returns the owner's action plan, or nil if none exists yet.
func (s *AssessmentService) GetPlan(ctx context.Context, owner domain.Owner) (*domain.ActionPlan, error) {
	return s.plans.GetPlan(ctx, owner)
}

// ToggleTask flips one task's completed flag without recomputing the score
// or touching any other task. Returns ErrNotFound if the owner has no plan
// or the task id is unknown.
func (s *AssessmentService) ToggleTask(ctx context.Context, owner domain.Owner, taskID string, completed bool) (*domain.ActionPlan, error) {
	return s.plans.SetTaskCompleted(ctx, owner, taskID, completed)
}

// NewPlanTasks converts scored task texts into trackable plan tasks. IDs are
// an application-layer concern assigned at persistence time.
func NewPlanTasks(texts []string) []domain.PlanTask {
	tasks := make([]domain.PlanTask, 0, len(texts))
	for _, text := range texts {
		tasks = append(tasks, domain.PlanTask{
			ID:        uuid.NewString(),
			Text:      text,
			Completed: false,
		})
	}
	return tasks
}
