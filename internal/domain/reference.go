package domain

// ReferenceValue is one entry of the ideal-value table used for comparative display.
type ReferenceValue struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Ideal float64 `json:"ideal"`
	Unit  string  `json:"unit,omitempty"`
}

// ComparisonPoint pairs a patient's actual value with its ideal reference value.
type ComparisonPoint struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Ideal  float64 `json:"ideal"`
	Actual float64 `json:"actual"`
	Unit   string  `json:"unit,omitempty"`
}

// Reference keys, in display order.
const (
	RefBMI            = "bmi"
	RefSystolic       = "systolic_bp"
	RefDiastolic      = "diastolic_bp"
	RefEGFR           = "egfr"
	RefSleep          = "sleep_hours"
	RefFrailtyIndex   = "frailty_index"
	RefLifestyleIndex = "lifestyle_index"
)

// Score ceilings used to normalise the indices.
const (
	MaxFrailtyScore       = 5
	MaxLifestyleRiskScore = 6
)

// IdealReferenceValues returns the fixed ideal-value table in display order.
// A fresh slice is returned on every call.
func IdealReferenceValues() []ReferenceValue {
	return []ReferenceValue{
		{Key: RefBMI, Label: "BMI", Ideal: 22, Unit: "kg/m²"},
		{Key: RefSystolic, Label: "Systolic BP", Ideal: 120, Unit: "mmHg"},
		{Key: RefDiastolic, Label: "Diastolic BP", Ideal: 80, Unit: "mmHg"},
		{Key: RefEGFR, Label: "eGFR", Ideal: 90, Unit: "mL/min/1.73m²"},
		{Key: RefSleep, Label: "Sleep", Ideal: 7.5, Unit: "h"},
		{Key: RefFrailtyIndex, Label: "Frailty index", Ideal: 0},
		{Key: RefLifestyleIndex, Label: "Lifestyle index", Ideal: 1},
	}
}

// FrailtyIndex normalises a frailty score to [0,1]; 0 is best.
func FrailtyIndex(score int) float64 {
	return float64(score) / MaxFrailtyScore
}

// LifestyleIndex normalises a lifestyle risk score to [0,1]; 1 is best.
func LifestyleIndex(risk int) float64 {
	return 1 - float64(risk)/MaxLifestyleRiskScore
}

// BuildComparison returns the actual-vs-ideal series for an assessed patient.
func BuildComparison(input *PatientInput, result *AssessmentResult) []ComparisonPoint {
	actual := map[string]float64{
		RefBMI:            result.BMI,
		RefSystolic:       float64(input.SystolicBP),
		RefDiastolic:      float64(input.DiastolicBP),
		RefEGFR:           result.EGFR,
		RefSleep:          input.SleepHours,
		RefFrailtyIndex:   FrailtyIndex(result.FrailtyScore),
		RefLifestyleIndex: LifestyleIndex(result.LifestyleRiskScore),
	}

	refs := IdealReferenceValues()
	points := make([]ComparisonPoint, 0, len(refs))
	for _, ref := range refs {
		points = append(points, ComparisonPoint{
			Key:    ref.Key,
			Label:  ref.Label,
			Ideal:  ref.Ideal,
			Actual: actual[ref.Key],
			Unit:   ref.Unit,
		})
	}
	return points
}
