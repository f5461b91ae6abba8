package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// BMI and clinical cut-offs used by the recommendation rules.
const (
	EGFRReferralThreshold = 60.0
	SystolicHypertension  = 140
	DiastolicHypertension = 90
	BMIUnderweight        = 18.5
	BMIOverweight         = 24.0
	BMIObese              = 27.0
)

// RuleContext is the read-only view a rule predicate evaluates.
type RuleContext struct {
	Input  *domain.PatientInput
	Result *domain.AssessmentResult
}

// RecommendationRule is one row of the declarative rule table.
type RecommendationRule struct {
	Code        string
	Kind        domain.RuleKind
	Output      string
	Description string
	Message     string
	Predicate   func(*RuleContext) bool
}

// RuleDefinition is the predicate-free view of a rule, safe to serialise.
type RuleDefinition struct {
	Code        string          `json:"code"`
	Kind        domain.RuleKind `json:"kind"`
	Output      string          `json:"output"`
	Description string          `json:"description"`
	Message     string          `json:"message"`
}

// RecommendationEngine evaluates the referral and advisory rule tables.
// Rules are independent; every rule is evaluated and output order follows
// declaration order.
type RecommendationEngine struct {
	logger *logrus.Logger
	rules  []*RecommendationRule
	index  map[string]*RecommendationRule
}

// NewRecommendationEngine creates an engine loaded with the fixed rule table.
func NewRecommendationEngine(logger *logrus.Logger) *RecommendationEngine {
	engine := &RecommendationEngine{
		logger: logger,
		index:  make(map[string]*RecommendationRule),
	}
	engine.initializeRules()
	return engine
}

// Evaluate runs every rule against the input and its derived metrics.
func (e *RecommendationEngine) Evaluate(input *domain.PatientInput, result *domain.AssessmentResult) (domain.RecommendationOutput, []domain.RuleResult) {
	rc := &RuleContext{Input: input, Result: result}
	output := domain.RecommendationOutput{
		Referrals:  []domain.Specialty{},
		Advisories: []domain.Advisory{},
	}
	trace := make([]domain.RuleResult, 0, len(e.rules))

	for _, rule := range e.rules {
		applied := rule.Predicate(rc)
		trace = append(trace, rule.toResult(applied))
		if !applied {
			continue
		}
		switch rule.Kind {
		case domain.RuleKindReferral:
			output.Referrals = append(output.Referrals, domain.Specialty(rule.Output))
		case domain.RuleKindAdvisory:
			output.Advisories = append(output.Advisories, domain.Advisory(rule.Output))
		}
	}

	e.logger.WithFields(logrus.Fields{
		"total_rules":    len(trace),
		"referral_count": len(output.Referrals),
		"advisory_count": len(output.Advisories),
	}).Debug("Completed recommendation rule evaluation")

	return output, trace
}

// EvaluateRule evaluates a single rule by code.
func (e *RecommendationEngine) EvaluateRule(code string, input *domain.PatientInput, result *domain.AssessmentResult) (*domain.RuleResult, error) {
	rule, exists := e.index[code]
	if !exists {
		return nil, fmt.Errorf("unknown recommendation rule: %s", code)
	}
	res := rule.toResult(rule.Predicate(&RuleContext{Input: input, Result: result}))
	return &res, nil
}

// Rules returns the rule table in evaluation order.
func (e *RecommendationEngine) Rules() []RuleDefinition {
	defs := make([]RuleDefinition, 0, len(e.rules))
	for _, rule := range e.rules {
		defs = append(defs, RuleDefinition{
			Code:        rule.Code,
			Kind:        rule.Kind,
			Output:      rule.Output,
			Description: rule.Description,
			Message:     rule.Message,
		})
	}
	return defs
}

// Messages resolves the default display text for each emitted identifier,
// referrals first, in output order.
func (e *RecommendationEngine) Messages(output domain.RecommendationOutput) []domain.Message {
	byOutput := make(map[string]*RecommendationRule, len(e.rules))
	for _, rule := range e.rules {
		byOutput[string(rule.Kind)+":"+rule.Output] = rule
	}

	messages := make([]domain.Message, 0, len(output.Referrals)+len(output.Advisories))
	for _, s := range output.Referrals {
		if rule, ok := byOutput[string(domain.RuleKindReferral)+":"+s.String()]; ok {
			messages = append(messages, domain.Message{Kind: rule.Kind, ID: rule.Output, Text: rule.Message})
		}
	}
	for _, a := range output.Advisories {
		if rule, ok := byOutput[string(domain.RuleKindAdvisory)+":"+a.String()]; ok {
			messages = append(messages, domain.Message{Kind: rule.Kind, ID: rule.Output, Text: rule.Message})
		}
	}
	return messages
}

func (r *RecommendationRule) toResult(applied bool) domain.RuleResult {
	return domain.RuleResult{
		ID:          r.Code,
		Kind:        r.Kind,
		Output:      r.Output,
		Description: r.Description,
		Applied:     applied,
	}
}

// initializeRules declares the referral table followed by the advisory table.
func (e *RecommendationEngine) initializeRules() {
	e.addReferral("REF1", domain.SpecialtyNephrology, "eGFR below 60",
		"Consider a nephrology consultation.",
		func(rc *RuleContext) bool { return rc.Result.EGFR < EGFRReferralThreshold })
	e.addReferral("REF2", domain.SpecialtyCardiology, "Systolic BP ≥ 140 or diastolic BP ≥ 90",
		"Consider a cardiology consultation.",
		func(rc *RuleContext) bool {
			return rc.Input.SystolicBP >= SystolicHypertension || rc.Input.DiastolicBP >= DiastolicHypertension
		})
	e.addReferral("REF3", domain.SpecialtyMetabolismNutrition, "BMI ≥ 27 or BMI < 18.5",
		"Consider a metabolism clinic or dietitian consultation.",
		func(rc *RuleContext) bool { return rc.Result.BMI >= BMIObese || rc.Result.BMI < BMIUnderweight })
	e.addReferral("REF4", domain.SpecialtyGeriatricsRehab, "Frailty level is frail",
		"Consider a geriatrics or rehabilitation consultation.",
		func(rc *RuleContext) bool { return rc.Result.FrailtyLevel == domain.FrailtyFrail })
	e.addReferral("REF5", domain.SpecialtyPsychiatryAddiction, "Current drug use",
		"Consider psychiatry or an addiction treatment center.",
		func(rc *RuleContext) bool { return rc.Input.DrugUse == domain.DrugUseCurrent })
	e.addReferral("REF6", domain.SpecialtyCessationOralENT, "Current smoking or any betel-nut use",
		"Consider a smoking-cessation clinic, oral surgery, or ENT.",
		func(rc *RuleContext) bool {
			return rc.Input.Smoking == domain.SmokingCurrent || rc.Input.BetelNut != domain.BetelNutNone
		})

	e.addAdvisory("ADV1", domain.AdvisoryAlcoholReduction, "Any alcohol consumption",
		"Reduce alcohol intake; excessive drinking can cause liver disease, hypertension, arrhythmia and several cancers.",
		func(rc *RuleContext) bool { return rc.Input.Drinking != domain.DrinkingNone })
	e.addAdvisory("ADV2", domain.AdvisorySmokingCessation, "Current smoking",
		"Quit smoking; it greatly increases the risk of lung and oral cancer, cardiovascular disease, stroke and COPD.",
		func(rc *RuleContext) bool { return rc.Input.Smoking == domain.SmokingCurrent })
	e.addAdvisory("ADV3", domain.AdvisoryBetelNutCessation, "Any betel-nut use",
		"Betel-nut chewing is strongly associated with oral cancer, periodontal and digestive disease; consider quitting.",
		func(rc *RuleContext) bool { return rc.Input.BetelNut != domain.BetelNutNone })
	e.addAdvisory("ADV4", domain.AdvisorySubstanceResources, "Current drug use",
		"Substance abuse can damage nerves, liver, kidneys and mental and social functioning; seek treatment resources.",
		func(rc *RuleContext) bool { return rc.Input.DrugUse == domain.DrugUseCurrent })
	e.addAdvisory("ADV5", domain.AdvisoryStressManagement, "Stress level ≥ 7",
		"Long-term stress affects immune, digestive and cardiovascular health; try meditation, exercise or counseling.",
		func(rc *RuleContext) bool { return rc.Input.StressLevel >= HighStressThreshold })
	e.addAdvisory("ADV6", domain.AdvisoryInsufficientSleep, "Sleep below 5 hours",
		"Insufficient sleep impairs memory, immunity and metabolism; aim for at least 6 hours a night.",
		func(rc *RuleContext) bool { return rc.Input.SleepHours < ShortSleepHours })
	e.addAdvisory("ADV7", domain.AdvisoryExcessiveSleep, "Sleep above 10 hours",
		"Excessive sleep is linked to depression and metabolic syndrome; keep a regular 6 to 9 hours.",
		func(rc *RuleContext) bool { return rc.Input.SleepHours > LongSleepHours })
	e.addAdvisory("ADV8", domain.AdvisoryUnderweight, "BMI below 18.5",
		"Being underweight can lead to malnutrition, lower immunity and osteoporosis; improve nutrition and consult a dietitian.",
		func(rc *RuleContext) bool { return rc.Result.BMI < BMIUnderweight })
	e.addAdvisory("ADV9", domain.AdvisoryOverweight, "BMI from 24 up to 27",
		"Your weight is in the overweight range; increase activity and adjust your diet.",
		func(rc *RuleContext) bool { return rc.Result.BMI >= BMIOverweight && rc.Result.BMI < BMIObese })
	e.addAdvisory("ADV10", domain.AdvisoryObesity, "BMI 27 or above",
		"High body weight raises the risk of metabolic syndrome, cardiovascular disease and diabetes; manage weight with a dietitian.",
		func(rc *RuleContext) bool { return rc.Result.BMI >= BMIObese })

	e.logger.WithField("rule_count", len(e.rules)).Debug("Initialized recommendation rules")
}

func (e *RecommendationEngine) addReferral(code string, specialty domain.Specialty, description, message string, predicate func(*RuleContext) bool) {
	e.addRule(code, domain.RuleKindReferral, string(specialty), description, message, predicate)
}

func (e *RecommendationEngine) addAdvisory(code string, advisory domain.Advisory, description, message string, predicate func(*RuleContext) bool) {
	e.addRule(code, domain.RuleKindAdvisory, string(advisory), description, message, predicate)
}

func (e *RecommendationEngine) addRule(code string, kind domain.RuleKind, output, description, message string, predicate func(*RuleContext) bool) {
	rule := &RecommendationRule{
		Code:        code,
		Kind:        kind,
		Output:      output,
		Description: description,
		Message:     message,
		Predicate:   predicate,
	}
	e.rules = append(e.rules, rule)
	e.index[code] = rule
}
