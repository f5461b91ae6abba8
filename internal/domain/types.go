// Package domain contains the core entities of the integrated health assessment:
// patient measurements, derived metrics, frailty and lifestyle scoring results,
// and the referral/advisory identifiers produced by the recommendation rules.
//
// Frailty indicators follow the Fried phenotype (grip strength, gait speed,
// unintentional weight loss, exhaustion, low physical activity).
package domain

// Sex is the biological sex used by the eGFR equation.
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// GripStrength is the Fried grip-strength indicator.
type GripStrength string

const (
	GripNormal GripStrength = "normal"
	GripWeak   GripStrength = "weak"
)

// YesNo is a binary questionnaire answer.
type YesNo string

const (
	No  YesNo = "no"
	Yes YesNo = "yes"
)

// ActivityLevel is the self-reported daily activity level.
type ActivityLevel string

const (
	ActivityNormal ActivityLevel = "normal"
	ActivityLow    ActivityLevel = "low"
)

// Drinking is the alcohol consumption habit.
type Drinking string

const (
	DrinkingNone       Drinking = "none"
	DrinkingOccasional Drinking = "occasional"
	DrinkingFrequent   Drinking = "frequent"
)

// Smoking is the tobacco smoking status.
type Smoking string

const (
	SmokingNone    Smoking = "none"
	SmokingQuit    Smoking = "quit"
	SmokingCurrent Smoking = "current"
)

// BetelNut is the betel-nut chewing habit.
type BetelNut string

const (
	BetelNutNone       BetelNut = "none"
	BetelNutOccasional BetelNut = "occasional"
	BetelNutFrequent   BetelNut = "frequent"
)

// DrugUse is the substance-use history.
type DrugUse string

const (
	DrugUseNone    DrugUse = "none"
	DrugUsePast    DrugUse = "past"
	DrugUseCurrent DrugUse = "current"
)

// FrailtyLevel is the three-level classification of the frailty score.
type FrailtyLevel string

const (
	FrailtyNone     FrailtyLevel = "none"
	FrailtyPreFrail FrailtyLevel = "pre-frail"
	FrailtyFrail    FrailtyLevel = "frail"
)

// Specialty identifies a referral target produced by the recommendation rules.
type Specialty string

const (
	SpecialtyNephrology          Specialty = "nephrology"
	SpecialtyCardiology          Specialty = "cardiology"
	SpecialtyMetabolismNutrition Specialty = "metabolism_nutrition"
	SpecialtyGeriatricsRehab     Specialty = "geriatrics_rehabilitation"
	SpecialtyPsychiatryAddiction Specialty = "psychiatry_addiction"
	SpecialtyCessationOralENT    Specialty = "cessation_oral_surgery_ent"
)

// Advisory identifies an educational advisory message.
type Advisory string

const (
	AdvisoryAlcoholReduction   Advisory = "alcohol_reduction"
	AdvisorySmokingCessation   Advisory = "smoking_cessation"
	AdvisoryBetelNutCessation  Advisory = "betel_nut_cessation"
	AdvisorySubstanceResources Advisory = "substance_abuse_resources"
	AdvisoryStressManagement   Advisory = "stress_management"
	AdvisoryInsufficientSleep  Advisory = "insufficient_sleep"
	AdvisoryExcessiveSleep     Advisory = "excessive_sleep"
	AdvisoryUnderweight        Advisory = "underweight"
	AdvisoryOverweight         Advisory = "overweight"
	AdvisoryObesity            Advisory = "obesity"
)

// RuleKind separates referral rules from advisory rules.
type RuleKind string

const (
	RuleKindReferral RuleKind = "referral"
	RuleKindAdvisory RuleKind = "advisory"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexFemale, SexMale:
		return true
	default:
		return false
	}
}

func (g GripStrength) IsValid() bool {
	return g == GripNormal || g == GripWeak
}

func (y YesNo) IsValid() bool {
	return y == No || y == Yes
}

func (a ActivityLevel) IsValid() bool {
	return a == ActivityNormal || a == ActivityLow
}

func (d Drinking) IsValid() bool {
	switch d {
	case DrinkingNone, DrinkingOccasional, DrinkingFrequent:
		return true
	default:
		return false
	}
}

func (s Smoking) IsValid() bool {
	switch s {
	case SmokingNone, SmokingQuit, SmokingCurrent:
		return true
	default:
		return false
	}
}

func (b BetelNut) IsValid() bool {
	switch b {
	case BetelNutNone, BetelNutOccasional, BetelNutFrequent:
		return true
	default:
		return false
	}
}

func (d DrugUse) IsValid() bool {
	switch d {
	case DrugUseNone, DrugUsePast, DrugUseCurrent:
		return true
	default:
		return false
	}
}

// IsValid reports whether the level is one of the three classification levels.
func (f FrailtyLevel) IsValid() bool {
	switch f {
	case FrailtyNone, FrailtyPreFrail, FrailtyFrail:
		return true
	default:
		return false
	}
}

// String returns the string representation of the frailty level.
func (f FrailtyLevel) String() string {
	return string(f)
}

// Description returns a human-readable label for reports and the CLI.
func (f FrailtyLevel) Description() string {
	switch f {
	case FrailtyNone:
		return "No frailty"
	case FrailtyPreFrail:
		return "Pre-frail"
	case FrailtyFrail:
		return "Frail"
	default:
		return "Unknown frailty level"
	}
}

func (s Specialty) String() string {
	return string(s)
}

func (a Advisory) String() string {
	return string(a)
}
