package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-assessment-mcp-server/internal/domain"
)

func sampleAssessment() *domain.Assessment {
	return &domain.Assessment{
		ID: "a-1",
		Result: domain.AssessmentResult{
			EGFR:               59.073346354918954,
			BMI:                25.71166207529844,
			FrailtyScore:       1,
			FrailtyLevel:       domain.FrailtyPreFrail,
			LifestyleRiskScore: 2,
		},
		Recommendations: domain.RecommendationOutput{
			Referrals:  []domain.Specialty{domain.SpecialtyNephrology},
			Advisories: []domain.Advisory{domain.AdvisoryOverweight},
		},
		Messages: []domain.Message{
			{Kind: domain.RuleKindReferral, ID: "nephrology", Text: "Refer to nephrology."},
		},
		Comparison: []domain.ComparisonPoint{
			{Key: domain.RefBMI, Label: "BMI", Ideal: 22, Actual: 25.71166207529844, Unit: "kg/m²"},
		},
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "59.1", Metric(59.073346354918954))
	assert.Equal(t, "25.7", Metric(25.71166207529844))
	assert.Equal(t, "17.0", Metric(16.975308641975307))
	assert.Equal(t, "pre-frail (2)", Frailty(domain.FrailtyPreFrail, 2))
	assert.Equal(t, "none (0)", Frailty(domain.FrailtyNone, 0))
	assert.Equal(t, "2 / 6", Lifestyle(2))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleAssessment()))
	out := buf.String()

	assert.Contains(t, out, "59.1")
	assert.Contains(t, out, "25.7")
	assert.Contains(t, out, "pre-frail (1)")
	assert.Contains(t, out, "2 / 6")
	assert.Contains(t, out, "  - nephrology")
	assert.Contains(t, out, "  - overweight")
	assert.Contains(t, out, "[referral] Refer to nephrology.")
	assert.Contains(t, out, "25.71")
	assert.NotContains(t, out, "22.00")
}

func TestWriteText_EmptyRecommendations(t *testing.T) {
	a := sampleAssessment()
	a.Recommendations = domain.RecommendationOutput{Referrals: []domain.Specialty{}, Advisories: []domain.Advisory{}}
	a.Messages = nil

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a))
	assert.Equal(t, 2, strings.Count(buf.String(), "(none)"))
	assert.NotContains(t, buf.String(), "Messages")
}

func TestWrite_Formats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "JSON", sampleAssessment()))

	var decoded domain.Assessment
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "a-1", decoded.ID)
	assert.Equal(t, []domain.Specialty{domain.SpecialtyNephrology}, decoded.Recommendations.Referrals)

	buf.Reset()
	require.NoError(t, Write(&buf, "", sampleAssessment()))
	assert.Contains(t, buf.String(), "Metrics")

	assert.EqualError(t, Write(&buf, "yaml", sampleAssessment()), "unknown output format: yaml")
}
