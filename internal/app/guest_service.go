package app

import (
	"context"
	"errors"
	"time"

	"prochecka/internal/domain"

	"github.com/google/uuid"
)

// guestSessionTTL is how long an anonymous session stays resumable.
const guestSessionTTL = 30 * 24 * time.Hour

// GuestService manages the lifecycle of anonymous assessment sessions and
// their one-time promotion into permanent accounts.
type GuestService struct {
	guests domain.GuestSessionRepository
	plans  domain.ActionPlanRepository
	chats  domain.ChatHistoryRepository
	now    func() time.Time
}

// NewGuestService creates a GuestService backed by the given repositories.
func NewGuestService(guests domain.GuestSessionRepository, plans domain.ActionPlanRepository, chats domain.ChatHistoryRepository) *GuestService {
	return &GuestService{guests: guests, plans: plans, chats: chats, now: time.Now}
}

// ConversionResult reports what a Convert call actually migrated. Repeated
// calls for the same token report Converted=true with nothing migrated.
type ConversionResult struct {
	Converted      bool `json:"converted"`
	PlanCreated    bool `json:"planCreated"`
	MessagesCopied int  `json:"messagesCopied"`
}

// CreateOrResume returns the live session for token unchanged, or mints a
// new token and session when token is empty, unknown, expired or converted.
// Repeated calls with the same live token are idempotent.
func (s *GuestService) CreateOrResume(ctx context.Context, token string) (*domain.GuestSession, error) {
	if token != "" {
		sess, err := s.guests.GetGuestSession(ctx, token)
		if err != nil {
			return nil, err
		}
		if sess != nil && sess.ConvertedToUserID == nil && s.now().Before(sess.ExpiresAt) {
			return sess, nil
		}
	}
	return s.guests.CreateGuestSession(ctx, uuid.NewString(), s.now().Add(guestSessionTTL))
}

// UpdateProgress shallow-merges the named fields of partial into the
// session's assessment data. Unknown or expired tokens and converted
// sessions yield ErrNotFound.
func (s *GuestService) UpdateProgress(ctx context.Context, token string, partial domain.AssessmentData) (*domain.GuestSession, error) {
	sess, err := s.guests.GetGuestSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.ConvertedToUserID != nil || s.now().After(sess.ExpiresAt) {
		return nil, domain.ErrNotFound
	}

	data := sess.Data.Merge(partial)
	score := sess.RiskScore
	if data.Result != nil {
		v := data.Result.RiskScore
		score = &v
	}
	return s.guests.UpdateGuestSession(ctx, token, data, score)
}

// Convert promotes the guest session's data into the user's durable records
// exactly once. The conditional claim of converted_to_user_id happens first,
// so concurrent retries cannot migrate twice: the loser of the race sees the
// session as already converted and reports success without mutating
// anything. A user's existing action plan is never overwritten.
func (s *GuestService) Convert(ctx context.Context, token string, userID int64) (ConversionResult, error) {
	sess, err := s.guests.GetGuestSession(ctx, token)
	if err != nil {
		return ConversionResult{}, err
	}
	if sess == nil {
		return ConversionResult{}, domain.ErrNotFound
	}
	if sess.ConvertedToUserID != nil {
		return ConversionResult{Converted: true}, nil
	}

	claimed, err := s.guests.ClaimConversion(ctx, token, userID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return ConversionResult{Converted: true}, nil
		}
		return ConversionResult{}, err
	}
	if !claimed {
		// Lost the race to a concurrent conversion.
		return ConversionResult{Converted: true}, nil
	}

	res := ConversionResult{Converted: true}

	if sess.Data.Result != nil {
		plan := domain.ActionPlan{
			RiskScore:   sess.Data.Result.RiskScore,
			Factor:      sess.Data.Result.TopFactor,
			PlanMessage: sess.Data.Result.NudgeMessage,
			Tasks:       NewPlanTasks(sess.Data.Result.Tasks),
			UpdatedAt:   s.now(),
		}
		created, err := s.plans.CreateUserPlanIfAbsent(ctx, userID, plan)
		if err != nil {
			return res, err
		}
		res.PlanCreated = created
	}

	if len(sess.Data.Messages) > 0 {
		if err := s.chats.AppendChatMessages(ctx, userID, sess.Data.Messages); err != nil {
			return res, err
		}
		res.MessagesCopied = len(sess.Data.Messages)
	}

	return res, nil
}
