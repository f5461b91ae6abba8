// Package cache memoises assessments by their canonical input.
//
// Entries live in an in-process expirable LRU. When a Redis URL is configured
// a shared Redis tier sits behind it; every Redis call goes through a circuit
// breaker so an unreachable Redis degrades the cache to LRU-only instead of
// failing assessments.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/service"
)

// ResultCache implements domain.ResultCache.
type ResultCache struct {
	local   *lru.LRU[string, *domain.Assessment]
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	prefix  string
	logger  *logrus.Logger
}

// cachedAssessment is the Redis wire form.
type cachedAssessment struct {
	Assessment *domain.Assessment `json:"assessment"`
	CachedAt   time.Time          `json:"cached_at"`
}

// New creates a result cache from config. A Redis URL that cannot be parsed
// is an error; a Redis server that cannot be reached is only logged.
func New(cfg domain.CacheConfig, logger *logrus.Logger) (*ResultCache, error) {
	if cfg.MaxItems <= 0 {
		return nil, fmt.Errorf("cache max items must be positive, got %d", cfg.MaxItems)
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &ResultCache{
		local:  lru.NewLRU[string, *domain.Assessment](cfg.MaxItems, nil, ttl),
		ttl:    ttl,
		prefix: VersionedPrefix(cfg.KeyPrefix, service.EngineVersion),
		logger: logger,
	}

	if cfg.RedisURL == "" {
		return c, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	if cfg.MaxRetries != 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	c.redis = redis.NewClient(opts)
	c.breaker = newBreaker(cfg, logger)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logger.WithError(err).Warn("Redis unavailable, continuing with in-process cache only")
	}

	return c, nil
}

func newBreaker(cfg domain.CacheConfig, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-result-cache",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// VersionedPrefix scopes keys to one engine version, so entries written by
// another release in a shared Redis are never read back.
func VersionedPrefix(prefix, version string) string {
	return prefix + "v" + version + ":"
}

// Key derives the cache key for an input: the prefix followed by the hex
// SHA-256 of the input's JSON encoding. Equal inputs always share a key.
func Key(prefix string, input *domain.PatientInput) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return prefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached assessment for input, consulting Redis on a local miss.
func (c *ResultCache) Get(ctx context.Context, input *domain.PatientInput) (*domain.Assessment, bool) {
	key, err := Key(c.prefix, input)
	if err != nil {
		return nil, false
	}
	if a, ok := c.local.Get(key); ok {
		return a, true
	}
	if c.redis == nil {
		return nil, false
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		val, err := c.redis.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return val, err
	})
	if err != nil {
		c.logger.WithError(err).Debug("Redis cache lookup failed")
		return nil, false
	}
	raw, _ := result.([]byte)
	if raw == nil {
		return nil, false
	}

	var cached cachedAssessment
	if err := json.Unmarshal(raw, &cached); err != nil || cached.Assessment == nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false
	}

	c.local.Add(key, cached.Assessment)
	return cached.Assessment, true
}

// Set stores the assessment locally and, when configured, in Redis.
func (c *ResultCache) Set(ctx context.Context, input *domain.PatientInput, assessment *domain.Assessment) error {
	key, err := Key(c.prefix, input)
	if err != nil {
		return err
	}
	c.local.Add(key, assessment)

	if c.redis == nil {
		return nil
	}

	payload, err := json.Marshal(cachedAssessment{Assessment: assessment, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal cached assessment: %w", err)
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.redis.Set(ctx, key, payload, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to write Redis cache: %w", err)
	}
	return nil
}

// Ping checks the Redis tier. It is always healthy without one.
func (c *ResultCache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.redis.Ping(ctx).Err()
	})
	return err
}

// Len returns the number of entries in the local tier.
func (c *ResultCache) Len() int {
	return c.local.Len()
}

// Stats reports cache state for health endpoints.
func (c *ResultCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"local_entries": c.local.Len(),
		"redis_enabled": c.redis != nil,
	}
	if c.breaker != nil {
		stats["breaker_state"] = c.breaker.State().String()
	}
	return stats
}

// Close purges the local tier and closes the Redis client.
func (c *ResultCache) Close() error {
	c.local.Purge()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
