package service

import (
	"github.com/health-assessment-mcp-server/internal/domain"
)

// Lifestyle thresholds.
const (
	HighStressThreshold = 7
	ShortSleepHours     = 5.0
	LongSleepHours      = 10.0
)

type lifestyleFactor struct {
	Name    string
	Present func(*domain.PatientInput) bool
}

var lifestyleFactors = []lifestyleFactor{
	{"drinking", func(in *domain.PatientInput) bool { return in.Drinking != domain.DrinkingNone }},
	{"smoking", func(in *domain.PatientInput) bool { return in.Smoking == domain.SmokingCurrent }},
	{"betel_nut", func(in *domain.PatientInput) bool { return in.BetelNut != domain.BetelNutNone }},
	{"drug_use", func(in *domain.PatientInput) bool { return in.DrugUse == domain.DrugUseCurrent }},
	{"stress", func(in *domain.PatientInput) bool { return in.StressLevel >= HighStressThreshold }},
	{"sleep", func(in *domain.PatientInput) bool { return abnormalSleep(in.SleepHours) }},
}

// LifestyleRiskScore counts the present lifestyle risk factors (0–6).
func LifestyleRiskScore(input *domain.PatientInput) int {
	score := 0
	for _, factor := range lifestyleFactors {
		if factor.Present(input) {
			score++
		}
	}
	return score
}

// PresentLifestyleFactors returns the names of the factors that scored.
func PresentLifestyleFactors(input *domain.PatientInput) []string {
	present := make([]string, 0, len(lifestyleFactors))
	for _, factor := range lifestyleFactors {
		if factor.Present(input) {
			present = append(present, factor.Name)
		}
	}
	return present
}

// abnormalSleep is exclusive at both bounds: exactly 5 or 10 hours scores nothing.
func abnormalSleep(hours float64) bool {
	return hours < ShortSleepHours || hours > LongSleepHours
}
