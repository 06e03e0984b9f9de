package domain

// Factor names one of the 6 inputs that contribute points to the risk score.
type Factor string

// The contributing factors, in scoring evaluation order.
const (
	FactorGlucose       Factor = "glucose"
	FactorBMI           Factor = "bmi"
	FactorBloodPressure Factor = "bloodPressure"
	FactorAge           Factor = "age"
	FactorInsulin       Factor = "insulin"
	FactorPedigree      Factor = "diabetesPedigree"
)

// factorOrder is the fixed evaluation order. Ties on the top contributor
// always resolve to the earliest factor in this list, so the order must not
// change.
var factorOrder = []Factor{
	FactorGlucose, FactorBMI, FactorBloodPressure,
	FactorAge, FactorInsulin, FactorPedigree,
}

// RiskResult is the derived output of a scoring run. It is recomputed on
// every call and never mutated.
type RiskResult struct {
	RiskScore    int      `json:"riskScore"`
	TopFactor    Factor   `json:"topFactor"`
	NudgeMessage string   `json:"nudgeMessage"`
	Tasks        []string `json:"tasks"`
}

// Score maps validated health inputs to a risk result. It is pure and
// deterministic: no I/O, no clock, no randomness. Inputs must have passed
// Validate; the engine does not defend against out-of-range values.
//
// Each factor contributes points through a step function with inclusive
// lower bounds. The raw maximum across all factors is 115; the final score
// is clamped to 100.
func Score(in HealthInputs) RiskResult {
	points := map[Factor]int{
		FactorGlucose:       stepPoints(in.Glucose, 140, 35, 126, 25, 100, 15),
		FactorBMI:           stepPoints(in.BMI, 40, 30, 30, 20, 25, 10),
		FactorBloodPressure: stepPoints(in.BloodPressure, 90, 15, 80, 10, 0, 0),
		FactorAge:           stepPoints(in.Age, 60, 15, 45, 10, 30, 5),
		FactorInsulin:       stepPoints(in.Insulin, 200, 10, 100, 5, 0, 0),
		FactorPedigree:      stepPoints(in.DiabetesPedigree, 1.5, 10, 0.5, 5, 0, 0),
	}

	total := 0
	top := factorOrder[0]
	for _, f := range factorOrder {
		total += points[f]
		if points[f] > points[top] {
			top = f
		}
	}
	if total > 100 {
		total = 100
	}

	return RiskResult{
		RiskScore:    total,
		TopFactor:    top,
		NudgeMessage: nudgeMessage(top, total),
		Tasks:        taskTemplate(top),
	}
}

// stepPoints evaluates a 3-band step function. Bands with a zero threshold
// and zero points are unused.
func stepPoints(v, t1 float64, p1 int, t2 float64, p2 int, t3 float64, p3 int) int {
	switch {
	case v >= t1:
		return p1
	case v >= t2:
		return p2
	case t3 > 0 && v >= t3:
		return p3
	default:
		return 0
	}
}

// riskBand buckets a score into the 3-level band used for message wording.
func riskBand(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "moderate"
	default:
		return "low"
	}
}

func nudgeMessage(f Factor, score int) string {
	band := riskBand(score)
	switch f {
	case FactorGlucose:
		return "Your glucose level is the primary concern. With " + band + " risk, it's crucial to monitor your blood sugar regularly and follow a diabetes-friendly diet."
	case FactorBMI:
		return "Your BMI indicates the need for lifestyle changes. With " + band + " risk, focusing on weight management through diet and exercise is essential."
	case FactorBloodPressure:
		return "Your blood pressure needs attention. With " + band + " risk, managing stress and monitoring BP regularly is important."
	case FactorAge:
		return "Age-related risk factors require proactive management. With " + band + " risk, regular health screenings are recommended."
	case FactorInsulin:
		return "Your insulin levels suggest metabolic concerns. With " + band + " risk, working with healthcare providers on insulin management is key."
	case FactorPedigree:
		return "Family history increases your risk. With " + band + " risk, preventive measures and regular screening are crucial."
	default:
		return "With " + band + " risk, focusing on overall lifestyle improvements is recommended."
	}
}

// taskTemplate returns the fixed 6-item routine for a factor. IDs are
// assigned when a plan is persisted, not here.
func taskTemplate(f Factor) []string {
	switch f {
	case FactorGlucose:
		return []string{
			"Check fasting blood glucose every morning",
			"Eat a low-glycemic breakfast (oats, eggs, vegetables)",
			"Take a 15-minute walk after each meal",
			"Avoid sugary drinks and processed foods",
			"Track carbohydrate intake at each meal",
			"Stay hydrated with 8 glasses of water daily",
		}
	case FactorBMI:
		return []string{
			"Start your day with 20 minutes of exercise",
			"Eat portion-controlled meals (use smaller plates)",
			"Include protein in every meal for satiety",
			"Walk 10,000 steps daily",
			"Prepare healthy meals at home",
			"Get 7-8 hours of quality sleep",
		}
	case FactorBloodPressure:
		return []string{
			"Practice deep breathing exercises twice daily",
			"Reduce sodium intake (less than 2,300mg/day)",
			"Monitor blood pressure morning and evening",
			"Engage in 30 minutes of cardio exercise",
			"Limit caffeine and alcohol consumption",
			"Practice stress-reduction techniques (meditation/yoga)",
		}
	case FactorAge:
		return []string{
			"Schedule annual comprehensive health screenings",
			"Take prescribed medications on schedule",
			"Engage in balance and flexibility exercises",
			"Maintain social connections and mental activity",
			"Follow up with healthcare provider quarterly",
			"Monitor all vital signs regularly",
		}
	case FactorInsulin:
		return []string{
			"Monitor blood sugar before and after meals",
			"Time meals consistently throughout the day",
			"Coordinate exercise with medication schedule",
			"Keep healthy snacks available for blood sugar management",
			"Work with dietitian on meal planning",
			"Track insulin sensitivity patterns",
		}
	case FactorPedigree:
		return []string{
			"Schedule genetic counseling if available",
			"Get comprehensive diabetes screening annually",
			"Maintain detailed family health history",
			"Focus on modifiable risk factors (diet, exercise)",
			"Educate family members about diabetes prevention",
			"Monitor blood glucose monthly even if normal",
		}
	default:
		return []string{
			"Maintain a balanced, nutritious diet",
			"Exercise for at least 30 minutes daily",
			"Get regular health check-ups",
			"Manage stress effectively",
			"Stay hydrated throughout the day",
			"Maintain a healthy sleep schedule",
		}
	}
}
