package service

import (
	"github.com/health-assessment-mcp-server/internal/domain"
)

// frailtyIndicator is one Fried criterion; each present indicator scores one point.
type frailtyIndicator struct {
	Name    string
	Present func(*domain.PatientInput) bool
}

var frailtyIndicators = []frailtyIndicator{
	{"weak_grip", func(in *domain.PatientInput) bool { return in.GripStrength == domain.GripWeak }},
	{"slow_walk", func(in *domain.PatientInput) bool { return in.SlowWalk == domain.Yes }},
	{"weight_loss", func(in *domain.PatientInput) bool { return in.WeightLoss == domain.Yes }},
	{"fatigue", func(in *domain.PatientInput) bool { return in.Fatigue == domain.Yes }},
	{"low_activity", func(in *domain.PatientInput) bool { return in.ActivityLevel == domain.ActivityLow }},
}

// FrailtyScore counts the present frailty indicators (0–5).
func FrailtyScore(input *domain.PatientInput) int {
	score := 0
	for _, indicator := range frailtyIndicators {
		if indicator.Present(input) {
			score++
		}
	}
	return score
}

// PresentFrailtyIndicators returns the names of the indicators that scored.
func PresentFrailtyIndicators(input *domain.PatientInput) []string {
	present := make([]string, 0, len(frailtyIndicators))
	for _, indicator := range frailtyIndicators {
		if indicator.Present(input) {
			present = append(present, indicator.Name)
		}
	}
	return present
}

// ClassifyFrailty maps a score to its level: 0 none, 1–2 pre-frail, 3+ frail.
func ClassifyFrailty(score int) domain.FrailtyLevel {
	switch {
	case score <= 0:
		return domain.FrailtyNone
	case score <= 2:
		return domain.FrailtyPreFrail
	default:
		return domain.FrailtyFrail
	}
}
