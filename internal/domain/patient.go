package domain

import (
	"time"
)

// PatientInput holds the measurements and questionnaire answers for a single
// assessment. It is supplied once and never mutated by the core.
type PatientInput struct {
	Age            int     `json:"age" mapstructure:"age"`
	Sex            Sex     `json:"sex" mapstructure:"sex"`
	HeightCm       float64 `json:"height_cm" mapstructure:"height_cm"`
	WeightKg       float64 `json:"weight_kg" mapstructure:"weight_kg"`
	CreatinineMgDl float64 `json:"creatinine_mg_dl" mapstructure:"creatinine_mg_dl"`
	SystolicBP     int     `json:"systolic_bp" mapstructure:"systolic_bp"`
	DiastolicBP    int     `json:"diastolic_bp" mapstructure:"diastolic_bp"`

	// Fried frailty indicators
	GripStrength  GripStrength  `json:"grip_strength" mapstructure:"grip_strength"`
	SlowWalk      YesNo         `json:"slow_walk" mapstructure:"slow_walk"`
	WeightLoss    YesNo         `json:"weight_loss" mapstructure:"weight_loss"`
	Fatigue       YesNo         `json:"fatigue" mapstructure:"fatigue"`
	ActivityLevel ActivityLevel `json:"activity_level" mapstructure:"activity_level"`

	// Lifestyle
	Drinking    Drinking `json:"drinking" mapstructure:"drinking"`
	Smoking     Smoking  `json:"smoking" mapstructure:"smoking"`
	BetelNut    BetelNut `json:"betel_nut" mapstructure:"betel_nut"`
	DrugUse     DrugUse  `json:"drug_use" mapstructure:"drug_use"`
	StressLevel int      `json:"stress_level" mapstructure:"stress_level"`
	SleepHours  float64  `json:"sleep_hours" mapstructure:"sleep_hours"`
}

// AssessmentResult holds the metrics derived from a PatientInput.
type AssessmentResult struct {
	EGFR               float64      `json:"egfr"`
	BMI                float64      `json:"bmi"`
	FrailtyScore       int          `json:"frailty_score"`
	FrailtyLevel       FrailtyLevel `json:"frailty_level"`
	LifestyleRiskScore int          `json:"lifestyle_risk_score"`
}

// RecommendationOutput holds the referral specialties and advisory messages
// in rule declaration order.
type RecommendationOutput struct {
	Referrals  []Specialty `json:"referrals"`
	Advisories []Advisory  `json:"advisories"`
}

// RuleResult records the outcome of one recommendation rule.
type RuleResult struct {
	ID          string   `json:"id"`
	Kind        RuleKind `json:"kind"`
	Output      string   `json:"output"`
	Description string   `json:"description"`
	Applied     bool     `json:"applied"`
}

// Assessment is the complete output of one assessment call.
type Assessment struct {
	ID              string               `json:"id"`
	Result          AssessmentResult     `json:"result"`
	Recommendations RecommendationOutput `json:"recommendations"`
	Messages        []Message            `json:"messages"`
	Rules           []RuleResult         `json:"rules,omitempty"`
	Comparison      []ComparisonPoint    `json:"comparison"`
	AssessedAt      time.Time            `json:"assessed_at"`
	EngineVersion   string               `json:"engine_version"`
}

// Message pairs an output identifier with its default display text.
type Message struct {
	Kind RuleKind `json:"kind"`
	ID   string   `json:"id"`
	Text string   `json:"text"`
}

// LogFields returns the derived, non-identifying fields of an assessment for
// structured logging. Raw measurements are deliberately excluded.
func (a *Assessment) LogFields() map[string]any {
	return map[string]any{
		"assessment_id":        a.ID,
		"frailty_score":        a.Result.FrailtyScore,
		"frailty_level":        a.Result.FrailtyLevel.String(),
		"lifestyle_risk_score": a.Result.LifestyleRiskScore,
		"referral_count":       len(a.Recommendations.Referrals),
		"advisory_count":       len(a.Recommendations.Advisories),
	}
}
