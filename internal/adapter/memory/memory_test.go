package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"prochecka/internal/domain"
)

func TestActionPlanRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	owner := domain.UserOwner(1)

	// No plan yet
	plan, err := db.GetPlan(ctx, owner)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if plan != nil {
		t.Error("expected nil plan")
	}

	// Upsert
	stored, err := db.UpsertPlan(ctx, owner, domain.ActionPlan{
		RiskScore:   55,
		Factor:      domain.FactorBMI,
		PlanMessage: "watch your weight",
		Tasks: []domain.PlanTask{
			{ID: "t1", Text: "walk daily"},
			{ID: "t2", Text: "smaller portions"},
		},
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertPlan: %v", err)
	}
	if stored.RiskScore != 55 || len(stored.Tasks) != 2 {
		t.Errorf("unexpected stored plan: %+v", stored)
	}

	// Guest plans are stored separately from user plans
	guestPlan, _ := db.GetPlan(ctx, domain.GuestOwner("tok"))
	if guestPlan != nil {
		t.Error("guest owner must not see a user plan")
	}

	// Toggle
	updated, err := db.SetTaskCompleted(ctx, owner, "t2", true)
	if err != nil {
		t.Fatalf("SetTaskCompleted: %v", err)
	}
	if !updated.Tasks[1].Completed || updated.Tasks[0].Completed {
		t.Errorf("wrong task toggled: %+v", updated.Tasks)
	}

	if _, err := db.SetTaskCompleted(ctx, owner, "missing", true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Mutating the returned plan must not leak into the store
	updated.Tasks[0].Completed = true
	fresh, _ := db.GetPlan(ctx, owner)
	if fresh.Tasks[0].Completed {
		t.Error("returned plan aliases stored state")
	}

	// CreateUserPlanIfAbsent never overwrites
	created, err := db.CreateUserPlanIfAbsent(ctx, 1, domain.ActionPlan{RiskScore: 99})
	if err != nil {
		t.Fatalf("CreateUserPlanIfAbsent: %v", err)
	}
	if created {
		t.Error("expected no-op for existing plan")
	}
	created, _ = db.CreateUserPlanIfAbsent(ctx, 2, domain.ActionPlan{RiskScore: 30})
	if !created {
		t.Error("expected plan created for new user")
	}
}

func TestGuestSessionRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	sess, err := db.CreateGuestSession(ctx, "tok-1", expires)
	if err != nil {
		t.Fatalf("CreateGuestSession: %v", err)
	}
	if sess.Token != "tok-1" || sess.Data.Version != 1 {
		t.Errorf("unexpected session: %+v", sess)
	}

	// Duplicate token
	if _, err := db.CreateGuestSession(ctx, "tok-1", expires); err == nil {
		t.Error("expected error for duplicate token")
	}

	// Unknown token reads as nil, nil
	got, err := db.GetGuestSession(ctx, "unknown")
	if err != nil || got != nil {
		t.Errorf("expected nil, nil, got %v, %v", got, err)
	}

	// Update
	score := 40
	inputs := domain.HealthInputs{Glucose: 120, Age: 50}
	updated, err := db.UpdateGuestSession(ctx, "tok-1", domain.AssessmentData{Version: 1, Inputs: &inputs}, &score)
	if err != nil {
		t.Fatalf("UpdateGuestSession: %v", err)
	}
	if updated.RiskScore == nil || *updated.RiskScore != 40 {
		t.Errorf("score not stored: %v", updated.RiskScore)
	}

	// Claim exactly once
	claimed, err := db.ClaimConversion(ctx, "tok-1", 7)
	if err != nil {
		t.Fatalf("ClaimConversion: %v", err)
	}
	if !claimed {
		t.Error("expected first claim to win")
	}
	claimed, err = db.ClaimConversion(ctx, "tok-1", 8)
	if err != nil {
		t.Fatalf("ClaimConversion: %v", err)
	}
	if claimed {
		t.Error("expected second claim to lose")
	}
	got, _ = db.GetGuestSession(ctx, "tok-1")
	if got.ConvertedToUserID == nil || *got.ConvertedToUserID != 7 {
		t.Errorf("expected first claimer to own the session, got %v", got.ConvertedToUserID)
	}

	// Converted sessions refuse updates
	if _, err := db.UpdateGuestSession(ctx, "tok-1", domain.AssessmentData{}, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Expired sessions refuse updates too
	if _, err := db.CreateGuestSession(ctx, "tok-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("CreateGuestSession: %v", err)
	}
	if _, err := db.UpdateGuestSession(ctx, "tok-2", domain.AssessmentData{}, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChatHistoryRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	userID := int64(1)

	for i := 0; i < 5; i++ {
		err := db.AppendChatMessages(ctx, userID, []domain.ChatMessage{
			{Role: "user", Text: "q", Timestamp: time.Now()},
			{Role: "assistant", Text: "a", Timestamp: time.Now()},
		})
		if err != nil {
			t.Fatalf("AppendChatMessages: %v", err)
		}
	}

	all, err := db.ListChatMessages(ctx, userID, 0)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(all) != 10 {
		t.Errorf("expected 10 messages, got %d", len(all))
	}

	// Limit keeps the most recent, oldest first
	tail, _ := db.ListChatMessages(ctx, userID, 4)
	if len(tail) != 4 {
		t.Errorf("expected 4 messages, got %d", len(tail))
	}
	if tail[len(tail)-1].Role != "assistant" {
		t.Errorf("expected assistant last, got %s", tail[len(tail)-1].Role)
	}

	// Other user sees nothing
	other, _ := db.ListChatMessages(ctx, 999, 0)
	if len(other) != 0 {
		t.Error("expected empty transcript for other user")
	}
}

func TestProgressRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	userID := int64(1)

	ids, err := db.GetProgress(ctx, userID, domain.ProgressDiet, "2026-08-28")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty, got %v", ids)
	}

	if err := db.SetProgress(ctx, userID, domain.ProgressDiet, "2026-08-28", []string{"t1", "t2"}); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	ids, _ = db.GetProgress(ctx, userID, domain.ProgressDiet, "2026-08-28")
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %v", ids)
	}

	// Kinds and days are independent keys
	ids, _ = db.GetProgress(ctx, userID, domain.ProgressExercise, "2026-08-28")
	if len(ids) != 0 {
		t.Errorf("expected empty for other kind, got %v", ids)
	}
	ids, _ = db.GetProgress(ctx, userID, domain.ProgressDiet, "2026-08-29")
	if len(ids) != 0 {
		t.Errorf("expected empty for other day, got %v", ids)
	}

	// Upsert replaces
	if err := db.SetProgress(ctx, userID, domain.ProgressDiet, "2026-08-28", []string{"t3"}); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	ids, _ = db.GetProgress(ctx, userID, domain.ProgressDiet, "2026-08-28")
	if len(ids) != 1 || ids[0] != "t3" {
		t.Errorf("expected replacement, got %v", ids)
	}
}

func TestUserAndSessionRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}

	if _, err := db.Create(ctx, "alice", "hash"); err == nil {
		t.Error("expected error for duplicate username")
	}

	got, _ := db.GetByUsername(ctx, "alice")
	if got == nil || got.ID != u.ID {
		t.Errorf("GetByUsername mismatch: %+v", got)
	}

	// Mutating a returned user must not leak into the store
	got.PasswordHash = "tampered"
	fresh, _ := db.GetByID(ctx, u.ID)
	if fresh.PasswordHash != "hash" {
		t.Error("returned user aliases stored state")
	}
	missing, err := db.GetByUsername(ctx, "bob")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown user, got %v, %v", missing, err)
	}

	sessions := db.NewSessionRepo()
	if err := sessions.Create(ctx, u.ID, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	s, _ := sessions.GetByToken(ctx, "tok")
	if s == nil || s.UserID != u.ID {
		t.Errorf("GetByToken mismatch: %+v", s)
	}

	if err := sessions.Create(ctx, u.ID, "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	if err := sessions.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if s, _ := sessions.GetByToken(ctx, "old"); s != nil {
		t.Error("expected expired session removed")
	}
	if s, _ := sessions.GetByToken(ctx, "tok"); s == nil {
		t.Error("live session should survive DeleteExpired")
	}

	if err := sessions.Delete(ctx, "tok"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s, _ := sessions.GetByToken(ctx, "tok"); s != nil {
		t.Error("expected session deleted")
	}
}
