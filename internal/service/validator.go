package service

import (
	"fmt"
	"math"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// Input ranges accepted by the assessment core.
const (
	MinAge, MaxAge                 = 1, 120
	MinHeightCm, MaxHeightCm       = 100.0, 250.0
	MinWeightKg, MaxWeightKg       = 30.0, 200.0
	MinCreatinine, MaxCreatinine   = 0.1, 15.0
	MinSystolicBP, MaxSystolicBP   = 80, 250
	MinDiastolicBP, MaxDiastolicBP = 40, 150
	MinStress, MaxStress           = 0, 10
	MinSleepHours, MaxSleepHours   = 0.0, 12.0
)

// ValidateInput checks every PatientInput field against its documented domain
// and returns the first violation as a *domain.ValidationError. Fields are
// checked in declaration order so the reported field is deterministic.
func ValidateInput(input *domain.PatientInput) error {
	if input == nil {
		return domain.NewValidationError("input", "patient input is required", nil)
	}

	checks := []func(*domain.PatientInput) error{
		checkDemographics,
		checkMeasurements,
		checkFrailtyIndicators,
		checkLifestyle,
		checkSleep,
	}
	for _, check := range checks {
		if err := check(input); err != nil {
			return err
		}
	}
	return nil
}

// IsWholeOrHalf reports whether v lies on a half-unit boundary.
func IsWholeOrHalf(v float64) bool {
	doubled := v * 2
	return doubled == math.Trunc(doubled)
}

// ValidateEGFRInput checks only the fields the eGFR equation reads.
func ValidateEGFRInput(age int, creatinineMgDl float64, sex domain.Sex) error {
	if err := checkAge(age); err != nil {
		return err
	}
	if err := checkSex(sex); err != nil {
		return err
	}
	return checkCreatinine(creatinineMgDl)
}

// ValidateBMIInput checks only the fields the BMI formula reads.
func ValidateBMIInput(heightCm, weightKg float64) error {
	if !inRange(heightCm, MinHeightCm, MaxHeightCm) {
		return rangeError("height_cm", heightCm, MinHeightCm, MaxHeightCm)
	}
	if !inRange(weightKg, MinWeightKg, MaxWeightKg) {
		return rangeError("weight_kg", weightKg, MinWeightKg, MaxWeightKg)
	}
	return nil
}

// ValidateFrailtyInput checks the five frailty indicator answers.
func ValidateFrailtyInput(input *domain.PatientInput) error {
	return checkFrailtyIndicators(input)
}

// ValidateLifestyleInput checks the lifestyle answers, stress and sleep.
func ValidateLifestyleInput(input *domain.PatientInput) error {
	if err := checkLifestyle(input); err != nil {
		return err
	}
	return checkSleep(input)
}

func checkAge(age int) error {
	if age < MinAge || age > MaxAge {
		return rangeError("age", age, MinAge, MaxAge)
	}
	return nil
}

func checkSex(sex domain.Sex) error {
	if !sex.IsValid() {
		return domain.NewValidationError("sex", "must be one of female, male", sex)
	}
	return nil
}

func checkCreatinine(v float64) error {
	// Creatinine is a divisor in the eGFR equation.
	if !(v > 0) {
		return domain.NewValidationError("creatinine_mg_dl", "must be greater than zero", v)
	}
	if !inRange(v, MinCreatinine, MaxCreatinine) {
		return rangeError("creatinine_mg_dl", v, MinCreatinine, MaxCreatinine)
	}
	return nil
}

func checkDemographics(in *domain.PatientInput) error {
	if err := checkAge(in.Age); err != nil {
		return err
	}
	return checkSex(in.Sex)
}

func checkMeasurements(in *domain.PatientInput) error {
	if err := ValidateBMIInput(in.HeightCm, in.WeightKg); err != nil {
		return err
	}
	if err := checkCreatinine(in.CreatinineMgDl); err != nil {
		return err
	}
	if in.SystolicBP < MinSystolicBP || in.SystolicBP > MaxSystolicBP {
		return rangeError("systolic_bp", in.SystolicBP, MinSystolicBP, MaxSystolicBP)
	}
	if in.DiastolicBP < MinDiastolicBP || in.DiastolicBP > MaxDiastolicBP {
		return rangeError("diastolic_bp", in.DiastolicBP, MinDiastolicBP, MaxDiastolicBP)
	}
	return nil
}

func checkFrailtyIndicators(in *domain.PatientInput) error {
	if !in.GripStrength.IsValid() {
		return enumError("grip_strength", in.GripStrength, "normal, weak")
	}
	if !in.SlowWalk.IsValid() {
		return enumError("slow_walk", in.SlowWalk, "no, yes")
	}
	if !in.WeightLoss.IsValid() {
		return enumError("weight_loss", in.WeightLoss, "no, yes")
	}
	if !in.Fatigue.IsValid() {
		return enumError("fatigue", in.Fatigue, "no, yes")
	}
	if !in.ActivityLevel.IsValid() {
		return enumError("activity_level", in.ActivityLevel, "normal, low")
	}
	return nil
}

func checkLifestyle(in *domain.PatientInput) error {
	if !in.Drinking.IsValid() {
		return enumError("drinking", in.Drinking, "none, occasional, frequent")
	}
	if !in.Smoking.IsValid() {
		return enumError("smoking", in.Smoking, "none, quit, current")
	}
	if !in.BetelNut.IsValid() {
		return enumError("betel_nut", in.BetelNut, "none, occasional, frequent")
	}
	if !in.DrugUse.IsValid() {
		return enumError("drug_use", in.DrugUse, "none, past, current")
	}
	if in.StressLevel < MinStress || in.StressLevel > MaxStress {
		return rangeError("stress_level", in.StressLevel, MinStress, MaxStress)
	}
	return nil
}

func checkSleep(in *domain.PatientInput) error {
	if !inRange(in.SleepHours, MinSleepHours, MaxSleepHours) {
		return rangeError("sleep_hours", in.SleepHours, MinSleepHours, MaxSleepHours)
	}
	if !IsWholeOrHalf(in.SleepHours) {
		return domain.NewValidationError("sleep_hours", "must be a whole or half hour (e.g. 6, 6.5, 7)", in.SleepHours)
	}
	return nil
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func rangeError[T int | float64](field string, value, lo, hi T) *domain.ValidationError {
	return domain.NewValidationError(field, fmt.Sprintf("must be between %v and %v", lo, hi), value)
}

func enumError[T ~string](field string, value T, allowed string) *domain.ValidationError {
	return domain.NewValidationError(field, "must be one of "+allowed, string(value))
}
