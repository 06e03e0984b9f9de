package domain

import (
	"context"
	"time"
)

// GuestState describes where a guest session is in its lifecycle.
type GuestState string

// Guest session lifecycle states. CONVERTED and EXPIRED are terminal.
const (
	GuestNew        GuestState = "NEW"
	GuestInProgress GuestState = "IN_PROGRESS"
	GuestScored     GuestState = "SCORED"
	GuestConverted  GuestState = "CONVERTED"
	GuestExpired    GuestState = "EXPIRED"
)

// AssessmentData is the versioned in-progress state held by a guest session.
// All fields are named and optional; unknown fields in an update are
// rejected at the HTTP boundary rather than merged.
type AssessmentData struct {
	Version          int           `json:"version"`
	Inputs           *HealthInputs `json:"inputs,omitempty"`
	Result           *RiskResult   `json:"result,omitempty"`
	Messages         []ChatMessage `json:"messages,omitempty"`
	DietProgress     []string      `json:"dietProgress,omitempty"`
	ExerciseProgress []string      `json:"exerciseProgress,omitempty"`
}

// Merge shallow-overwrites the non-empty fields of partial onto d. Messages
// replace the stored slice wholesale; they are not concatenated.
func (d AssessmentData) Merge(partial AssessmentData) AssessmentData {
	out := d
	if partial.Version != 0 {
		out.Version = partial.Version
	}
	if partial.Inputs != nil {
		out.Inputs = partial.Inputs
	}
	if partial.Result != nil {
		out.Result = partial.Result
	}
	if partial.Messages != nil {
		out.Messages = partial.Messages
	}
	if partial.DietProgress != nil {
		out.DietProgress = partial.DietProgress
	}
	if partial.ExerciseProgress != nil {
		out.ExerciseProgress = partial.ExerciseProgress
	}
	return out
}

// GuestSession is an anonymous, token-keyed, time-limited holder of
// in-progress assessment state prior to account creation.
type GuestSession struct {
	Token             string         `json:"sessionToken"`
	Data              AssessmentData `json:"assessmentData"`
	RiskScore         *int           `json:"riskScore,omitempty"`
	ConvertedToUserID *int64         `json:"convertedToUserId,omitempty"`
	ExpiresAt         time.Time      `json:"expiresAt"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// State derives the lifecycle state at time now. A session with a non-nil
// ConvertedToUserID is terminal regardless of expiry.
func (s *GuestSession) State(now time.Time) GuestState {
	switch {
	case s.ConvertedToUserID != nil:
		return GuestConverted
	case now.After(s.ExpiresAt):
		return GuestExpired
	case s.Data.Result != nil:
		return GuestScored
	case s.Data.Inputs != nil || len(s.Data.Messages) > 0:
		return GuestInProgress
	default:
		return GuestNew
	}
}

// GuestSessionRepository is the port for guest session persistence. Getters
// return (nil, nil) when no session exists for the token.
type GuestSessionRepository interface {
	CreateGuestSession(ctx context.Context, token string, expiresAt time.Time) (*GuestSession, error)
	GetGuestSession(ctx context.Context, token string) (*GuestSession, error)
	// UpdateGuestSession replaces the stored assessment data and the
	// denormalized risk score for a live, unconverted session.
	UpdateGuestSession(ctx context.Context, token string, data AssessmentData, riskScore *int) (*GuestSession, error)
	// ClaimConversion sets converted_to_user_id only if it is still unset
	// (compare-and-set) and reports whether this call won the claim.
	ClaimConversion(ctx context.Context, token string, userID int64) (bool, error)
}
