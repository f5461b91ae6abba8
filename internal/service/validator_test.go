package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-assessment-mcp-server/internal/domain"
)

func TestValidateInput_Valid(t *testing.T) {
	require.NoError(t, ValidateInput(healthyInput()))
}

func TestValidateInput_Nil(t *testing.T) {
	err := ValidateInput(nil)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "input", ve.Field)
}

func TestValidateInput_SleepGranularity(t *testing.T) {
	tests := []struct {
		hours float64
		valid bool
	}{
		{0, true},
		{0.5, true},
		{4.5, true},
		{6.5, true},
		{12, true},
		{6.3, false},
		{7.25, false},
		{11.9, false},
	}

	for _, tt := range tests {
		in := withInput(func(p *domain.PatientInput) { p.SleepHours = tt.hours })
		err := ValidateInput(in)
		if tt.valid {
			assert.NoError(t, err, "sleep_hours=%v", tt.hours)
			continue
		}
		ve, ok := domain.AsValidationError(err)
		if assert.True(t, ok, "sleep_hours=%v", tt.hours) {
			assert.Equal(t, "sleep_hours", ve.Field)
		}
	}
}

func TestValidateInput_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PatientInput)
		field  string
	}{
		{"age zero", func(p *domain.PatientInput) { p.Age = 0 }, "age"},
		{"age too high", func(p *domain.PatientInput) { p.Age = 121 }, "age"},
		{"unknown sex", func(p *domain.PatientInput) { p.Sex = "x" }, "sex"},
		{"height too low", func(p *domain.PatientInput) { p.HeightCm = 99.9 }, "height_cm"},
		{"height NaN", func(p *domain.PatientInput) { p.HeightCm = math.NaN() }, "height_cm"},
		{"weight too high", func(p *domain.PatientInput) { p.WeightKg = 200.5 }, "weight_kg"},
		{"creatinine zero", func(p *domain.PatientInput) { p.CreatinineMgDl = 0 }, "creatinine_mg_dl"},
		{"creatinine negative", func(p *domain.PatientInput) { p.CreatinineMgDl = -1 }, "creatinine_mg_dl"},
		{"creatinine below range", func(p *domain.PatientInput) { p.CreatinineMgDl = 0.05 }, "creatinine_mg_dl"},
		{"creatinine above range", func(p *domain.PatientInput) { p.CreatinineMgDl = 15.1 }, "creatinine_mg_dl"},
		{"systolic too low", func(p *domain.PatientInput) { p.SystolicBP = 79 }, "systolic_bp"},
		{"diastolic too high", func(p *domain.PatientInput) { p.DiastolicBP = 151 }, "diastolic_bp"},
		{"grip empty", func(p *domain.PatientInput) { p.GripStrength = "" }, "grip_strength"},
		{"slow walk invalid", func(p *domain.PatientInput) { p.SlowWalk = "sometimes" }, "slow_walk"},
		{"weight loss invalid", func(p *domain.PatientInput) { p.WeightLoss = "true" }, "weight_loss"},
		{"fatigue invalid", func(p *domain.PatientInput) { p.Fatigue = "" }, "fatigue"},
		{"activity invalid", func(p *domain.PatientInput) { p.ActivityLevel = "high" }, "activity_level"},
		{"drinking invalid", func(p *domain.PatientInput) { p.Drinking = "daily" }, "drinking"},
		{"smoking invalid", func(p *domain.PatientInput) { p.Smoking = "vape" }, "smoking"},
		{"betel invalid", func(p *domain.PatientInput) { p.BetelNut = "yes" }, "betel_nut"},
		{"drug use invalid", func(p *domain.PatientInput) { p.DrugUse = "yes" }, "drug_use"},
		{"stress negative", func(p *domain.PatientInput) { p.StressLevel = -1 }, "stress_level"},
		{"stress above ten", func(p *domain.PatientInput) { p.StressLevel = 11 }, "stress_level"},
		{"sleep negative", func(p *domain.PatientInput) { p.SleepHours = -0.5 }, "sleep_hours"},
		{"sleep above twelve", func(p *domain.PatientInput) { p.SleepHours = 12.5 }, "sleep_hours"},
		{"sleep infinite", func(p *domain.PatientInput) { p.SleepHours = math.Inf(1) }, "sleep_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(withInput(tt.mutate))
			require.Error(t, err)

			ve, ok := domain.AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateInput_RangeBoundariesInclusive(t *testing.T) {
	in := withInput(func(p *domain.PatientInput) {
		p.Age = 120
		p.HeightCm = 100
		p.WeightKg = 200
		p.CreatinineMgDl = 0.1
		p.SystolicBP = 250
		p.DiastolicBP = 40
		p.StressLevel = 10
		p.SleepHours = 0
	})
	assert.NoError(t, ValidateInput(in))
}

func TestIsWholeOrHalf(t *testing.T) {
	assert.True(t, IsWholeOrHalf(6))
	assert.True(t, IsWholeOrHalf(6.5))
	assert.False(t, IsWholeOrHalf(6.3))
	assert.False(t, IsWholeOrHalf(6.75))
}

func TestPartialValidators(t *testing.T) {
	assert.NoError(t, ValidateEGFRInput(65, 1.0, domain.SexFemale))
	ve, ok := domain.AsValidationError(ValidateEGFRInput(65, 0, domain.SexFemale))
	require.True(t, ok)
	assert.Equal(t, "creatinine_mg_dl", ve.Field)
	ve, ok = domain.AsValidationError(ValidateEGFRInput(65, 1.0, "unknown"))
	require.True(t, ok)
	assert.Equal(t, "sex", ve.Field)

	assert.NoError(t, ValidateBMIInput(170, 70))
	ve, ok = domain.AsValidationError(ValidateBMIInput(170, 20))
	require.True(t, ok)
	assert.Equal(t, "weight_kg", ve.Field)

	assert.NoError(t, ValidateFrailtyInput(healthyInput()))
	assert.Error(t, ValidateFrailtyInput(withInput(func(p *domain.PatientInput) { p.Fatigue = "often" })))

	assert.NoError(t, ValidateLifestyleInput(healthyInput()))
	assert.Error(t, ValidateLifestyleInput(withInput(func(p *domain.PatientInput) { p.SleepHours = 6.3 })))
}
