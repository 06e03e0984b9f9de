// Package domain contains the core business entities, the risk engine and
// the repository ports.
package domain

import "fmt"

// HealthInputs is the fixed 8-field PIMA questionnaire record. It is
// immutable once submitted for a given assessment run.
type HealthInputs struct {
	Pregnancies      float64 `json:"pregnancies"`
	Glucose          float64 `json:"glucose"`
	BloodPressure    float64 `json:"bloodPressure"`
	SkinThickness    float64 `json:"skinThickness"`
	Insulin          float64 `json:"insulin"`
	BMI              float64 `json:"bmi"`
	DiabetesPedigree float64 `json:"diabetesPedigree"`
	Age              float64 `json:"age"`
}

// HealthInputsForm is the questionnaire body as submitted. Answers decode
// into pointers so an omitted field is distinguishable from an answered zero.
type HealthInputsForm struct {
	Pregnancies      *float64 `json:"pregnancies"`
	Glucose          *float64 `json:"glucose"`
	BloodPressure    *float64 `json:"bloodPressure"`
	SkinThickness    *float64 `json:"skinThickness"`
	Insulin          *float64 `json:"insulin"`
	BMI              *float64 `json:"bmi"`
	DiabetesPedigree *float64 `json:"diabetesPedigree"`
	Age              *float64 `json:"age"`
}

// Inputs assembles the record, requiring every answer to be present. A
// missing answer is a caller error, the same as an out-of-range one.
func (f HealthInputsForm) Inputs() (HealthInputs, error) {
	answers := []*float64{
		f.Pregnancies, f.Glucose, f.BloodPressure, f.SkinThickness,
		f.Insulin, f.BMI, f.DiabetesPedigree, f.Age,
	}
	for i, ft := range Features {
		if answers[i] == nil {
			return HealthInputs{}, &ValidationError{Field: ft.Name, Reason: "is required"}
		}
	}
	return HealthInputs{
		Pregnancies:      *f.Pregnancies,
		Glucose:          *f.Glucose,
		BloodPressure:    *f.BloodPressure,
		SkinThickness:    *f.SkinThickness,
		Insulin:          *f.Insulin,
		BMI:              *f.BMI,
		DiabetesPedigree: *f.DiabetesPedigree,
		Age:              *f.Age,
	}, nil
}

// Feature describes one questionnaire field: the question shown to the user
// and the inclusive range an answer must fall in.
type Feature struct {
	Name     string  `json:"name"`
	Question string  `json:"question"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Features lists the 8 PIMA questionnaire fields in asking order. The same
// table drives input validation.
var Features = []Feature{
	{"pregnancies", "How many pregnancies have you had? (Enter 0 if not applicable)", 0, 20},
	{"glucose", "What is your fasting blood glucose level (mg/dL)?", 0, 300},
	{"bloodPressure", "What is your diastolic blood pressure (mm Hg)?", 0, 200},
	{"skinThickness", "What is your triceps skin fold thickness (mm)?", 0, 100},
	{"insulin", "What is your 2-hour serum insulin level (mu U/ml)?", 0, 900},
	{"bmi", "What is your Body Mass Index (BMI)?", 0, 70},
	{"diabetesPedigree", "What is your diabetes pedigree function score? (0.0 - 2.5, use 0.5 if unknown)", 0, 2.5},
	{"age", "What is your age in years?", 18, 120},
}

// Validate checks every field against its declared range. Out-of-range
// values are a caller error; nothing is clamped. Score must only be called
// on inputs that pass Validate.
func (in HealthInputs) Validate() error {
	values := []float64{
		in.Pregnancies, in.Glucose, in.BloodPressure, in.SkinThickness,
		in.Insulin, in.BMI, in.DiabetesPedigree, in.Age,
	}
	for i, f := range Features {
		v := values[i]
		if v < f.Min || v > f.Max {
			return &ValidationError{
				Field:  f.Name,
				Reason: fmt.Sprintf("must be between %g and %g", f.Min, f.Max),
			}
		}
	}
	return nil
}
