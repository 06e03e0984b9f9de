package domain

import "context"

// ProgressKind distinguishes the two daily checklists a user can track.
type ProgressKind string

// The tracked checklist kinds.
const (
	ProgressDiet     ProgressKind = "diet"
	ProgressExercise ProgressKind = "exercise"
)

// Valid reports whether k is a known checklist kind.
func (k ProgressKind) Valid() bool {
	return k == ProgressDiet || k == ProgressExercise
}

// ProgressRepository is the port for per-user per-local-day checklist
// completion state, keyed by (user, kind, day).
type ProgressRepository interface {
	GetProgress(ctx context.Context, userID int64, kind ProgressKind, localDay string) ([]string, error)
	SetProgress(ctx context.Context, userID int64, kind ProgressKind, localDay string, completedIDs []string) error
}
