package domain_test

import (
	"reflect"
	"testing"

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
		Age:              50,
	}
}

func TestScoreExample(t *testing.T) {
	// glucose 35 + bmi 20 + bp 10 + age 10 + insulin 0 + pedigree 5 = 80
	got := domain.Score(validInputs())
	if got.RiskScore != 80 {
		t.Errorf("RiskScore = %d; want 80", got.RiskScore)
	}
	if got.TopFactor != domain.FactorGlucose {
		t.Errorf("TopFactor = %q; want %q", got.TopFactor, domain.FactorGlucose)
	}
	if len(got.Tasks) != 6 {
		t.Errorf("len(Tasks) = %d; want 6", len(got.Tasks))
	}
	if got.NudgeMessage == "" {
		t.Error("NudgeMessage is empty")
	}
}

func TestScoreDeterministic(t *testing.T) {
	a := domain.Score(validInputs())
	b := domain.Score(validInputs())
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs gave different results:\n%+v\n%+v", a, b)
	}
}

func TestScoreSaturation(t *testing.T) {
	// All maxima: 35+30+15+15+10+10 = 115 raw points, clamped to 100.
	in := domain.HealthInputs{
		Pregnancies:      0,
		Glucose:          200,
		BloodPressure:    95,
		SkinThickness:    20,
		Insulin:          250,
		BMI:              45,
		DiabetesPedigree: 1.8,
		Age:              65,
	}
	got := domain.Score(in)
	if got.RiskScore != 100 {
		t.Errorf("RiskScore = %d; want 100 (clamped from 115)", got.RiskScore)
	}
}

func TestScoreTieBreakOrder(t *testing.T) {
	// bmi and bloodPressure both contribute 10; bmi is earlier in the
	// evaluation order so it must win.
	in := domain.HealthInputs{
		Pregnancies:      0,
		Glucose:          90,
		BloodPressure:    85,
		SkinThickness:    10,
		Insulin:          50,
		BMI:              26,
		DiabetesPedigree: 0.2,
		Age:              25,
	}
	got := domain.Score(in)
	if got.TopFactor != domain.FactorBMI {
		t.Errorf("TopFactor = %q; want %q (tie resolves to earlier factor)", got.TopFactor, domain.FactorBMI)
	}
}

func TestScoreGlucoseBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		glucose float64
		want    int
	}{
		{"band edge inclusive", 140, 35},
		{"just below top band", 139, 15},
		{"prediabetic edge", 126, 25},
		{"elevated edge", 100, 15},
		{"normal", 99, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := domain.HealthInputs{Glucose: tc.glucose, Age: 18}
			got := domain.Score(in)
			if got.RiskScore != tc.want {
				t.Errorf("glucose=%v: RiskScore = %d; want %d", tc.glucose, got.RiskScore, tc.want)
			}
		})
	}
}

func TestScoreTasksKeyedByFactorOnly(t *testing.T) {
	// Same top factor at different bands must produce the same task list;
	// only the message wording changes with the band.
	low := domain.Score(domain.HealthInputs{Glucose: 105, Age: 18})
	high := domain.Score(domain.HealthInputs{Glucose: 200, BMI: 35, BloodPressure: 92, Age: 65})
	if low.TopFactor != domain.FactorGlucose || high.TopFactor != domain.FactorGlucose {
		t.Fatalf("expected glucose to dominate both, got %q and %q", low.TopFactor, high.TopFactor)
	}
	if !reflect.DeepEqual(low.Tasks, high.Tasks) {
		t.Error("task list changed with risk band; it must depend on the factor only")
	}
	if low.NudgeMessage == high.NudgeMessage {
		t.Error("expected band-specific message wording")
	}
}

func TestInputsFormRequiresEveryAnswer(t *testing.T) {
	age := 45.0
	_, err := domain.HealthInputsForm{Age: &age}.Inputs()
	if err == nil {
		t.Fatal("expected error for missing answers")
	}
	ve, ok := err.(*domain.ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	// The first missing field in asking order is reported.
	if ve.Field != "pregnancies" {
		t.Errorf("Field = %q; want %q", ve.Field, "pregnancies")
	}

	full := validInputs()
	form := domain.HealthInputsForm{
		Pregnancies:      &full.Pregnancies,
		Glucose:          &full.Glucose,
		BloodPressure:    &full.BloodPressure,
		SkinThickness:    &full.SkinThickness,
		Insulin:          &full.Insulin,
		BMI:              &full.BMI,
		DiabetesPedigree: &full.DiabetesPedigree,
		Age:              &full.Age,
	}
	got, err := form.Inputs()
	if err != nil {
		t.Fatalf("complete form rejected: %v", err)
	}
	if got != full {
		t.Errorf("assembled inputs = %+v; want %+v", got, full)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.HealthInputs)
		field  string
	}{
		{"glucose too high", func(in *domain.HealthInputs) { in.Glucose = 301 }, "glucose"},
		{"age below minimum", func(in *domain.HealthInputs) { in.Age = 17 }, "age"},
		{"negative insulin", func(in *domain.HealthInputs) { in.Insulin = -1 }, "insulin"},
		{"pedigree above range", func(in *domain.HealthInputs) { in.DiabetesPedigree = 2.6 }, "diabetesPedigree"},
		{"bmi above range", func(in *domain.HealthInputs) { in.BMI = 71 }, "bmi"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInputs()
			tc.mutate(&in)
			err := in.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			ve, ok := err.(*domain.ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Field != tc.field {
				t.Errorf("Field = %q; want %q", ve.Field, tc.field)
			}
		})
	}

	if err := validInputs().Validate(); err != nil {
		t.Errorf("valid inputs rejected: %v", err)
	}
}
