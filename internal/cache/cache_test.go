package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testInput(age int) *domain.PatientInput {
	return &domain.PatientInput{
		Age:            age,
		Sex:            domain.SexFemale,
		HeightCm:       160,
		WeightKg:       55,
		CreatinineMgDl: 0.8,
		SystolicBP:     120,
		DiastolicBP:    80,
		GripStrength:   domain.GripNormal,
		SlowWalk:       domain.No,
		WeightLoss:     domain.No,
		Fatigue:        domain.No,
		ActivityLevel:  domain.ActivityNormal,
		Drinking:       domain.DrinkingNone,
		Smoking:        domain.SmokingNone,
		BetelNut:       domain.BetelNutNone,
		DrugUse:        domain.DrugUseNone,
		StressLevel:    2,
		SleepHours:     7,
	}
}

func localConfig(maxItems int, ttl time.Duration) domain.CacheConfig {
	return domain.CacheConfig{Enabled: true, MaxItems: maxItems, DefaultTTL: ttl, KeyPrefix: "test:"}
}

func TestKey(t *testing.T) {
	a, err := Key("p:", testInput(40))
	require.NoError(t, err)
	b, err := Key("p:", testInput(40))
	require.NoError(t, err)
	c, err := Key("p:", testInput(41))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("p:")+64)
}

func TestKey_ScopedToEngineVersion(t *testing.T) {
	current, err := Key(VersionedPrefix("p:", "1.0.0"), testInput(40))
	require.NoError(t, err)
	previous, err := Key(VersionedPrefix("p:", "0.9.0"), testInput(40))
	require.NoError(t, err)
	assert.NotEqual(t, current, previous)

	c, err := New(localConfig(4, time.Minute), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "test:v"+service.EngineVersion+":", c.prefix)
}

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(localConfig(0, time.Minute), testLogger())
	assert.Error(t, err)
}

func TestNew_RejectsBadRedisURL(t *testing.T) {
	cfg := localConfig(10, time.Minute)
	cfg.RedisURL = "not-a-url://"
	_, err := New(cfg, testLogger())
	assert.Error(t, err)
}

func TestResultCache_LocalRoundTrip(t *testing.T) {
	c, err := New(localConfig(10, time.Minute), testLogger())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, ok := c.Get(ctx, testInput(40))
	assert.False(t, ok)

	want := &domain.Assessment{EngineVersion: "1.0.0", Result: domain.AssessmentResult{BMI: 21.5}}
	require.NoError(t, c.Set(ctx, testInput(40), want))

	got, ok := c.Get(ctx, testInput(40))
	require.True(t, ok)
	assert.Same(t, want, got)
	assert.Equal(t, 1, c.Len())
	assert.NoError(t, c.Ping(ctx))

	stats := c.Stats()
	assert.Equal(t, false, stats["redis_enabled"])
	assert.Equal(t, 1, stats["local_entries"])
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(localConfig(2, time.Minute), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	for _, age := range []int{30, 31, 32} {
		require.NoError(t, c.Set(ctx, testInput(age), &domain.Assessment{}))
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, testInput(30))
	assert.False(t, ok)
	_, ok = c.Get(ctx, testInput(32))
	assert.True(t, ok)
}

func TestResultCache_Expiry(t *testing.T) {
	c, err := New(localConfig(10, 50*time.Millisecond), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testInput(50), &domain.Assessment{}))
	time.Sleep(120 * time.Millisecond)

	_, ok := c.Get(ctx, testInput(50))
	assert.False(t, ok)
}

func TestResultCache_UnreachableRedisDegradesToLocal(t *testing.T) {
	cfg := localConfig(10, time.Minute)
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	cfg.MaxRetries = -1
	cfg.BreakerFailures = 2
	cfg.BreakerTimeout = time.Minute

	c, err := New(cfg, testLogger())
	require.NoError(t, err, "an unreachable Redis must not prevent construction")
	defer c.Close()

	ctx := context.Background()
	in := testInput(60)
	want := &domain.Assessment{EngineVersion: "1.0.0"}

	// Ping in New was the first failure; this write is the second and trips the breaker.
	assert.Error(t, c.Set(ctx, in, want))

	err = c.Set(ctx, in, want)
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	got, ok := c.Get(ctx, in)
	require.True(t, ok)
	assert.Same(t, want, got)
	assert.Equal(t, "open", c.Stats()["breaker_state"])
}

func TestResultCache_ImplementsDomainInterface(t *testing.T) {
	var _ domain.ResultCache = (*ResultCache)(nil)
}
