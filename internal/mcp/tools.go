package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/report"
	"github.com/health-assessment-mcp-server/internal/service"
)

// Tool names.
const (
	ToolAssessHealth       = "assess_health"
	ToolValidateInput      = "validate_patient_input"
	ToolCalculateEGFR      = "calculate_egfr"
	ToolCalculateBMI       = "calculate_bmi"
	ToolAssessFrailty      = "assess_frailty"
	ToolScoreLifestyleRisk = "score_lifestyle_risk"
	ToolListRules          = "list_recommendation_rules"
)

var toolNames = []string{
	ToolAssessHealth,
	ToolValidateInput,
	ToolCalculateEGFR,
	ToolCalculateBMI,
	ToolAssessFrailty,
	ToolScoreLifestyleRisk,
	ToolListRules,
}

// EGFRParams defines parameters for the calculate_egfr tool
type EGFRParams struct {
	Age            int        `json:"age" jsonschema:"age in whole years, 1 to 120"`
	Sex            domain.Sex `json:"sex" jsonschema:"female or male"`
	CreatinineMgDl float64    `json:"creatinine_mg_dl" jsonschema:"serum creatinine in mg/dL, 0.1 to 15"`
}

// EGFRResult is the calculate_egfr output.
type EGFRResult struct {
	EGFR               float64 `json:"egfr"`
	Display            string  `json:"display"`
	NephrologyReferral bool    `json:"nephrology_referral"`
	ReferralThreshold  float64 `json:"referral_threshold"`
}

// BMIParams defines parameters for the calculate_bmi tool
type BMIParams struct {
	HeightCm float64 `json:"height_cm" jsonschema:"height in cm, 100 to 250"`
	WeightKg float64 `json:"weight_kg" jsonschema:"weight in kg, 30 to 200"`
}

// BMIResult is the calculate_bmi output.
type BMIResult struct {
	BMI      float64 `json:"bmi"`
	Display  string  `json:"display"`
	Category string  `json:"category"`
}

// FrailtyParams defines parameters for the assess_frailty tool
type FrailtyParams struct {
	GripStrength  domain.GripStrength  `json:"grip_strength" jsonschema:"normal or weak"`
	SlowWalk      domain.YesNo         `json:"slow_walk" jsonschema:"no or yes"`
	WeightLoss    domain.YesNo         `json:"weight_loss" jsonschema:"unintentional weight loss, no or yes"`
	Fatigue       domain.YesNo         `json:"fatigue" jsonschema:"no or yes"`
	ActivityLevel domain.ActivityLevel `json:"activity_level" jsonschema:"normal or low"`
}

// FrailtyResult is the assess_frailty output.
type FrailtyResult struct {
	Score       int                 `json:"score"`
	Level       domain.FrailtyLevel `json:"level"`
	Description string              `json:"description"`
	Display     string              `json:"display"`
	Indicators  []string            `json:"indicators"`
}

// LifestyleParams defines parameters for the score_lifestyle_risk tool
type LifestyleParams struct {
	Drinking    domain.Drinking `json:"drinking" jsonschema:"none, occasional or frequent"`
	Smoking     domain.Smoking  `json:"smoking" jsonschema:"none, quit or current"`
	BetelNut    domain.BetelNut `json:"betel_nut" jsonschema:"none, occasional or frequent"`
	DrugUse     domain.DrugUse  `json:"drug_use" jsonschema:"none, past or current"`
	StressLevel int             `json:"stress_level" jsonschema:"self-rated stress, 0 to 10"`
	SleepHours  float64         `json:"sleep_hours" jsonschema:"nightly sleep in half-hour steps, 0 to 12"`
}

// LifestyleResult is the score_lifestyle_risk output.
type LifestyleResult struct {
	Score   int      `json:"score"`
	Max     int      `json:"max"`
	Display string   `json:"display"`
	Factors []string `json:"factors"`
}

// ValidationResult is the validate_patient_input output.
type ValidationResult struct {
	Valid   bool        `json:"valid"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message,omitempty"`
	Value   interface{} `json:"value,omitempty"`
}

// ListRulesParams takes no arguments.
type ListRulesParams struct{}

// RulesResult is the list_recommendation_rules output.
type RulesResult struct {
	Rules []service.RuleDefinition `json:"rules"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolAssessHealth,
		Description: "Run the full health assessment: eGFR, BMI, frailty, lifestyle risk, specialty referrals and advisories.",
	}, s.handleAssessHealth)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolValidateInput,
		Description: "Check a patient input against every field range and allowed value without computing anything.",
	}, s.handleValidateInput)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolCalculateEGFR,
		Description: "Estimate glomerular filtration rate (mL/min/1.73m²) from age, sex and serum creatinine.",
	}, s.handleCalculateEGFR)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolCalculateBMI,
		Description: "Calculate body-mass index from height and weight.",
	}, s.handleCalculateBMI)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolAssessFrailty,
		Description: "Score the five frailty indicators and classify as none, pre-frail or frail.",
	}, s.handleAssessFrailty)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolScoreLifestyleRisk,
		Description: "Count lifestyle risk factors (0 to 6).",
	}, s.handleScoreLifestyleRisk)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListRules,
		Description: "List the referral and advisory rules in evaluation order.",
	}, s.handleListRules)
}

func (s *Server) handleAssessHealth(ctx context.Context, req *mcp.CallToolRequest, params domain.PatientInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolAssessHealth).Info("Tool invoked")

	assessment, err := s.assessor.Assess(ctx, &params)
	if err != nil {
		return s.createErrorResult("Assessment rejected", err), nil, nil
	}
	return jsonResult(assessment)
}

func (s *Server) handleValidateInput(ctx context.Context, req *mcp.CallToolRequest, params domain.PatientInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolValidateInput).Info("Tool invoked")

	result := ValidationResult{Valid: true}
	if err := s.assessor.Validate(&params); err != nil {
		ve, ok := domain.AsValidationError(err)
		if !ok {
			return s.createErrorResult("Validation failed", err), nil, nil
		}
		result = ValidationResult{Field: ve.Field, Message: ve.Message, Value: ve.Value}
	}
	return jsonResult(result)
}

func (s *Server) handleCalculateEGFR(ctx context.Context, req *mcp.CallToolRequest, params EGFRParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolCalculateEGFR).Info("Tool invoked")

	if err := service.ValidateEGFRInput(params.Age, params.CreatinineMgDl, params.Sex); err != nil {
		return s.createErrorResult("Invalid eGFR input", err), nil, nil
	}

	egfr := service.CalculateEGFR(params.Age, params.CreatinineMgDl, params.Sex)
	return jsonResult(EGFRResult{
		EGFR:               egfr,
		Display:            report.Metric(egfr),
		NephrologyReferral: egfr < service.EGFRReferralThreshold,
		ReferralThreshold:  service.EGFRReferralThreshold,
	})
}

func (s *Server) handleCalculateBMI(ctx context.Context, req *mcp.CallToolRequest, params BMIParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolCalculateBMI).Info("Tool invoked")

	if err := service.ValidateBMIInput(params.HeightCm, params.WeightKg); err != nil {
		return s.createErrorResult("Invalid BMI input", err), nil, nil
	}

	bmi := service.CalculateBMI(params.HeightCm, params.WeightKg)
	return jsonResult(BMIResult{
		BMI:      bmi,
		Display:  report.Metric(bmi),
		Category: bmiCategory(bmi),
	})
}

func (s *Server) handleAssessFrailty(ctx context.Context, req *mcp.CallToolRequest, params FrailtyParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolAssessFrailty).Info("Tool invoked")

	input := &domain.PatientInput{
		GripStrength:  params.GripStrength,
		SlowWalk:      params.SlowWalk,
		WeightLoss:    params.WeightLoss,
		Fatigue:       params.Fatigue,
		ActivityLevel: params.ActivityLevel,
	}
	if err := service.ValidateFrailtyInput(input); err != nil {
		return s.createErrorResult("Invalid frailty input", err), nil, nil
	}

	score := service.FrailtyScore(input)
	level := service.ClassifyFrailty(score)
	return jsonResult(FrailtyResult{
		Score:       score,
		Level:       level,
		Description: level.Description(),
		Display:     report.Frailty(level, score),
		Indicators:  service.PresentFrailtyIndicators(input),
	})
}

func (s *Server) handleScoreLifestyleRisk(ctx context.Context, req *mcp.CallToolRequest, params LifestyleParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolScoreLifestyleRisk).Info("Tool invoked")

	input := &domain.PatientInput{
		Drinking:    params.Drinking,
		Smoking:     params.Smoking,
		BetelNut:    params.BetelNut,
		DrugUse:     params.DrugUse,
		StressLevel: params.StressLevel,
		SleepHours:  params.SleepHours,
	}
	if err := service.ValidateLifestyleInput(input); err != nil {
		return s.createErrorResult("Invalid lifestyle input", err), nil, nil
	}

	score := service.LifestyleRiskScore(input)
	return jsonResult(LifestyleResult{
		Score:   score,
		Max:     domain.MaxLifestyleRiskScore,
		Display: report.Lifestyle(score),
		Factors: service.PresentLifestyleFactors(input),
	})
}

func (s *Server) handleListRules(ctx context.Context, req *mcp.CallToolRequest, params ListRulesParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolListRules).Debug("Tool invoked")
	return jsonResult(RulesResult{Rules: s.assessor.Engine().Rules()})
}

// bmiCategory names the band the advisory rules use.
func bmiCategory(bmi float64) string {
	switch {
	case bmi < service.BMIUnderweight:
		return "underweight"
	case bmi < service.BMIOverweight:
		return "normal"
	case bmi < service.BMIObese:
		return "overweight"
	default:
		return "obese"
	}
}

// jsonResult renders v as indented JSON text content and returns v as the
// structured output.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
	}, v, nil
}

// createErrorResult reports a tool-level failure the client can show to the user.
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	s.logger.WithError(err).Info(message)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %v", message, err)}},
	}
}
