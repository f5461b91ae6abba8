package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// EngineVersion identifies the formula and rule-table revision in every assessment.
const EngineVersion = "1.0.0"

// Assessor runs the validate → metrics → recommendations pipeline.
// It holds no per-call state and is safe for concurrent use.
type Assessor struct {
	logger *logrus.Logger
	engine *RecommendationEngine
	cache  domain.ResultCache
	now    func() time.Time
	newID  func() string
}

// AssessorOption is a functional option for Assessor.
type AssessorOption func(*Assessor)

// WithResultCache enables memoisation of assessments.
func WithResultCache(cache domain.ResultCache) AssessorOption {
	return func(a *Assessor) {
		a.cache = cache
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) AssessorOption {
	return func(a *Assessor) {
		a.now = now
	}
}

// NewAssessor creates a new assessor
func NewAssessor(logger *logrus.Logger, opts ...AssessorOption) *Assessor {
	a := &Assessor{
		logger: logger,
		engine: NewRecommendationEngine(logger),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Engine exposes the rule engine for rule listing and single-rule evaluation.
func (a *Assessor) Engine() *RecommendationEngine {
	return a.engine
}

// Validate checks the input without computing anything.
func (a *Assessor) Validate(input *domain.PatientInput) error {
	return ValidateInput(input)
}

// ComputeMetrics validates the input and derives the AssessmentResult.
// No result is returned when validation fails.
func ComputeMetrics(input *domain.PatientInput) (*domain.AssessmentResult, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	score := FrailtyScore(input)
	return &domain.AssessmentResult{
		EGFR:               CalculateEGFR(input.Age, input.CreatinineMgDl, input.Sex),
		BMI:                CalculateBMI(input.HeightCm, input.WeightKg),
		FrailtyScore:       score,
		FrailtyLevel:       ClassifyFrailty(score),
		LifestyleRiskScore: LifestyleRiskScore(input),
	}, nil
}

// Assess performs the complete assessment workflow
func (a *Assessor) Assess(ctx context.Context, input *domain.PatientInput) (*domain.Assessment, error) {
	startTime := time.Now()

	result, err := ComputeMetrics(input)
	if err != nil {
		a.logger.WithError(err).Info("Rejected patient input")
		return nil, fmt.Errorf("invalid patient input: %w", err)
	}

	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, input); ok && cached.EngineVersion == EngineVersion {
			assessment := a.stamp(cached)
			a.logger.WithFields(logrus.Fields(assessment.LogFields())).
				WithField("cache_hit", true).
				Info("Health assessment completed")
			return assessment, nil
		}
	}

	recommendations, trace := a.engine.Evaluate(input, result)
	base := &domain.Assessment{
		Result:          *result,
		Recommendations: recommendations,
		Messages:        a.engine.Messages(recommendations),
		Rules:           trace,
		Comparison:      domain.BuildComparison(input, result),
		EngineVersion:   EngineVersion,
	}
	assessment := a.stamp(base)

	if a.cache != nil {
		if err := a.cache.Set(ctx, input, base); err != nil {
			a.logger.WithError(err).Warn("Failed to cache assessment")
		}
	}

	a.logger.WithFields(logrus.Fields(assessment.LogFields())).
		WithField("processing_time", time.Since(startTime)).
		Info("Health assessment completed")

	return assessment, nil
}

// stamp copies src with a fresh id and timestamp; cached assessments are
// never shared between callers.
func (a *Assessor) stamp(src *domain.Assessment) *domain.Assessment {
	out := *src
	out.ID = a.newID()
	out.AssessedAt = a.now()
	out.Recommendations = domain.RecommendationOutput{
		Referrals:  append([]domain.Specialty{}, src.Recommendations.Referrals...),
		Advisories: append([]domain.Advisory{}, src.Recommendations.Advisories...),
	}
	out.Messages = append([]domain.Message(nil), src.Messages...)
	out.Rules = append([]domain.RuleResult(nil), src.Rules...)
	out.Comparison = append([]domain.ComparisonPoint(nil), src.Comparison...)
	return &out
}
