package service

import (
	"math"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// eGFRCoefficients are the sex-specific constants of the creatinine equation.
type eGFRCoefficients struct {
	K            float64
	Alpha        float64
	GenderFactor float64
}

var egfrCoefficients = map[domain.Sex]eGFRCoefficients{
	domain.SexFemale: {K: 0.7, Alpha: -0.329, GenderFactor: 1.018},
	domain.SexMale:   {K: 0.9, Alpha: -0.411, GenderFactor: 1.0},
}

const (
	egfrBase         = 141.0
	egfrUpperExp     = -1.209
	egfrAgeDecayBase = 0.993
)

// CalculateEGFR estimates glomerular filtration rate (mL/min/1.73m²):
//
//	141 × min(Cr/k,1)^α × max(Cr/k,1)^−1.209 × 0.993^age × genderFactor
//
// The value is returned unrounded. Callers must validate that creatinine is
// positive and sex is known; an unknown sex uses the male constants.
func CalculateEGFR(age int, creatinineMgDl float64, sex domain.Sex) float64 {
	c, ok := egfrCoefficients[sex]
	if !ok {
		c = egfrCoefficients[domain.SexMale]
	}

	ratio := creatinineMgDl / c.K
	return egfrBase *
		math.Pow(math.Min(ratio, 1), c.Alpha) *
		math.Pow(math.Max(ratio, 1), egfrUpperExp) *
		math.Pow(egfrAgeDecayBase, float64(age)) *
		c.GenderFactor
}

// CalculateBMI returns weight / height² with height converted from cm to m.
func CalculateBMI(heightCm, weightKg float64) float64 {
	heightM := heightCm / 100
	return weightKg / (heightM * heightM)
}
