package app_test

import (
	"context"
	"errors"
	"testing"

	"prochecka/internal/adapter/memory"
	"prochecka/internal/app"
	"prochecka/internal/domain"
)

func validInputs() domain.HealthInputs {
	return domain.HealthInputs{
		Pregnancies:      2,
		Glucose:          150,
		BloodPressure:    85,
		SkinThickness:    20,
		Insulin:          80,
		BMI:              32,
		DiabetesPedigree: 0.6,
		Age:              45,
	}
}

func TestSubmit_Validation(t *testing.T) {
	db := memory.New()
	svc := app.NewAssessmentService(db, db)

	inputs := validInputs()
	inputs.Age = 5

	_, _, err := svc.Submit(context.Background(), domain.UserOwner(1), inputs)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Field != "age" {
		t.Fatalf("expected age field, got %q", ve.Field)
	}

	// Nothing should have been stored.
	plan, err := svc.GetPlan(context.Background(), domain.UserOwner(1))
	if err != nil || plan != nil {
		t.Fatalf("expected no plan after rejected submit, got %v, %v", plan, err)
	}
}

func TestSubmit_UserPlanUpsert(t *testing.T) {
	db := memory.New()
	svc := app.NewAssessmentService(db, db)
	owner := domain.UserOwner(7)

	result, plan, err := svc.Submit(context.Background(), owner, validInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RiskScore != 80 {
		t.Fatalf("expected score 80, got %d", result.RiskScore)
	}
	if result.TopFactor != domain.FactorGlucose {
		t.Fatalf("expected glucose top factor, got %s", result.TopFactor)
	}
	if plan == nil || plan.RiskScore != 80 || len(plan.Tasks) != 6 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	for _, task := range plan.Tasks {
		if task.ID == "" || task.Completed {
			t.Fatalf("task should have an id and start incomplete: %+v", task)
		}
	}

	// Re-running the assessment replaces the plan, one plan per owner.
	inputs := validInputs()
	inputs.Glucose = 90
	inputs.BMI = 22
	result2, plan2, err := svc.Submit(context.Background(), owner, inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result2.RiskScore >= result.RiskScore {
		t.Fatalf("expected lower score, got %d", result2.RiskScore)
	}

	stored, err := svc.GetPlan(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.RiskScore != plan2.RiskScore {
		t.Fatalf("stored plan not replaced: %+v", stored)
	}
}

func TestSubmit_GuestDenormalizesScore(t *testing.T) {
	db := memory.New()
	guests := app.NewGuestService(db, db, db)
	svc := app.NewAssessmentService(db, db)

	sess, err := guests.CreateOrResume(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, _, err := svc.Submit(context.Background(), domain.GuestOwner(sess.Token), validInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetGuestSession(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RiskScore == nil || *got.RiskScore != result.RiskScore {
		t.Fatalf("expected denormalized score %d, got %v", result.RiskScore, got.RiskScore)
	}
	if got.Data.Inputs == nil || got.Data.Result == nil {
		t.Fatal("expected inputs and result attached to session data")
	}
	if got.State(sess.CreatedAt) != domain.GuestScored {
		t.Fatalf("expected SCORED state, got %s", got.State(sess.CreatedAt))
	}
}

func TestSubmit_GuestWithoutSession(t *testing.T) {
	db := memory.New()
	svc := app.NewAssessmentService(db, db)
	owner := domain.GuestOwner("nope")

	_, _, err := svc.Submit(context.Background(), owner, validInputs())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The failed submit must not leave a plan behind for the bad token.
	plan, err := svc.GetPlan(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan != nil {
		t.Fatalf("plan persisted for a session that does not exist: %+v", plan)
	}
}

func TestToggleTask(t *testing.T) {
	db := memory.New()
	svc := app.NewAssessmentService(db, db)
	owner := domain.UserOwner(3)

	_, plan, err := svc.Submit(context.Background(), owner, validInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target := plan.Tasks[2]
	updated, err := svc.ToggleTask(context.Background(), owner, target.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the targeted task changes; score and siblings stay put.
	if updated.RiskScore != plan.RiskScore {
		t.Fatalf("score changed on toggle: %d", updated.RiskScore)
	}
	for _, task := range updated.Tasks {
		want := task.ID == target.ID
		if task.Completed != want {
			t.Fatalf("task %s completed=%v, want %v", task.ID, task.Completed, want)
		}
	}

	if _, err := svc.ToggleTask(context.Background(), owner, "missing-id", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown task, got %v", err)
	}
	if _, err := svc.ToggleTask(context.Background(), domain.UserOwner(99), target.ID, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for owner without plan, got %v", err)
	}
}
