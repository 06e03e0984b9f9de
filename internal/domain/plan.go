package domain

import (
	"context"
	"time"
)

// Owner identifies who a record belongs to: an authenticated user or an
// anonymous guest session. Exactly one field is set.
type Owner struct {
	UserID     int64
	GuestToken string
}

// UserOwner returns an Owner for an authenticated user.
func UserOwner(userID int64) Owner { return Owner{UserID: userID} }

// GuestOwner returns an Owner for an anonymous guest session token.
func GuestOwner(token string) Owner { return Owner{GuestToken: token} }

// IsUser reports whether the owner is an authenticated user.
func (o Owner) IsUser() bool { return o.UserID != 0 }

// PlanTask is a single trackable item of an action plan.
type PlanTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ActionPlan is the persisted output of a scoring run, one per owner.
// Re-running the assessment overwrites the plan; it never appends.
type ActionPlan struct {
	RiskScore   int        `json:"riskScore"`
	Factor      Factor     `json:"factor"`
	PlanMessage string     `json:"planMessage"`
	Tasks       []PlanTask `json:"tasks"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ActionPlanRepository is the port for action plan persistence. Getters
// return (nil, nil) when the owner has no plan.
type ActionPlanRepository interface {
	GetPlan(ctx context.Context, owner Owner) (*ActionPlan, error)
	// UpsertPlan stores the plan for the owner, replacing any existing one.
	UpsertPlan(ctx context.Context, owner Owner, plan ActionPlan) (*ActionPlan, error)
	// SetTaskCompleted flips one task's completed flag as a partial update
	// that leaves the score, factor, message and other tasks untouched.
	// Returns ErrNotFound if the owner has no plan or the task id is unknown.
	SetTaskCompleted(ctx context.Context, owner Owner, taskID string, completed bool) (*ActionPlan, error)
	// CreateUserPlanIfAbsent inserts a plan for the user only if none exists
	// and reports whether it did. Existing user plans are never overwritten.
	CreateUserPlanIfAbsent(ctx context.Context, userID int64, plan ActionPlan) (bool, error)
}
