package service

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/health-assessment-mcp-server/internal/domain"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// healthyInput returns a valid input that triggers no referral and no advisory.
func healthyInput() *domain.PatientInput {
	return &domain.PatientInput{
		Age:            40,
		Sex:            domain.SexMale,
		HeightCm:       175,
		WeightKg:       68,
		CreatinineMgDl: 0.9,
		SystolicBP:     118,
		DiastolicBP:    76,
		GripStrength:   domain.GripNormal,
		SlowWalk:       domain.No,
		WeightLoss:     domain.No,
		Fatigue:        domain.No,
		ActivityLevel:  domain.ActivityNormal,
		Drinking:       domain.DrinkingNone,
		Smoking:        domain.SmokingNone,
		BetelNut:       domain.BetelNutNone,
		DrugUse:        domain.DrugUseNone,
		StressLevel:    3,
		SleepHours:     7.5,
	}
}

func withInput(mutate func(*domain.PatientInput)) *domain.PatientInput {
	in := healthyInput()
	mutate(in)
	return in
}
