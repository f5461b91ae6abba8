package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/health-assessment-mcp-server/internal/domain"
)

func TestCalculateEGFR_GoldenValues(t *testing.T) {
	tests := []struct {
		name       string
		age        int
		creatinine float64
		sex        domain.Sex
		expected   float64
	}{
		{"female 65 creatinine 1.0", 65, 1.0, domain.SexFemale, 59.073346354918954},
		{"male 40 creatinine at k", 40, 0.9, domain.SexMale, 106.46063505229309},
		{"male 70 creatinine 2.0", 70, 2.0, domain.SexMale, 32.83979493057531},
		{"female 30 creatinine below k", 30, 0.5, domain.SexFemale, 129.87347746177306},
		{"male 50 creatinine below k", 50, 0.6, domain.SexMale, 117.23439455192204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEGFR(tt.age, tt.creatinine, tt.sex)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestCalculateEGFR_CreatinineAtK(t *testing.T) {
	// At Cr == k both power terms collapse to 1.
	for _, age := range []int{1, 30, 65, 120} {
		female := CalculateEGFR(age, 0.7, domain.SexFemale)
		assert.InDelta(t, 141*math.Pow(0.993, float64(age))*1.018, female, 1e-9)

		male := CalculateEGFR(age, 0.9, domain.SexMale)
		assert.InDelta(t, 141*math.Pow(0.993, float64(age)), male, 1e-9)
	}
}

func TestCalculateEGFR_StrictlyDecreasingInAge(t *testing.T) {
	for _, sex := range []domain.Sex{domain.SexFemale, domain.SexMale} {
		for _, cr := range []float64{0.4, 0.9, 1.5, 6.0} {
			prev := CalculateEGFR(1, cr, sex)
			for age := 2; age <= 120; age++ {
				cur := CalculateEGFR(age, cr, sex)
				if !assert.Less(t, cur, prev, "sex=%s cr=%v age=%d", sex, cr, age) {
					return
				}
				prev = cur
			}
		}
	}
}

func TestCalculateBMI(t *testing.T) {
	tests := []struct {
		name     string
		height   float64
		weight   float64
		expected float64
	}{
		{"overweight band", 165, 70, 25.71166207529844},
		{"underweight", 180, 55, 16.975308641975307},
		{"obese", 170, 90, 31.14186851211073},
		{"exactly 2m", 200, 100, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateBMI(tt.height, tt.weight), 1e-9)
		})
	}
}
