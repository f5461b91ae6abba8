package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// maxTrackedClients bounds the number of per-client limiters held at once.
const maxTrackedClients = 10000

// ClientRateLimiter hands out one token bucket per client IP. A bucket is
// dropped ClientTTL after creation and starts full on the client's next request.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *lru.LRU[string, *rate.Limiter]
}

// NewClientRateLimiter creates a limiter from config.
func NewClientRateLimiter(cfg domain.RateLimitConfig) *ClientRateLimiter {
	ttl := cfg.ClientTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ClientRateLimiter{
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		limiters: lru.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, ttl),
	}
}

// Allow reports whether the client may make a request now.
func (l *ClientRateLimiter) Allow(client string) bool {
	return l.limiterFor(client).Allow()
}

// limiterFor returns the client's bucket, creating it on first use. The
// lookup and insert happen under one lock so a client never gets two buckets.
func (l *ClientRateLimiter) limiterFor(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters.Get(client)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(client, limiter)
	}
	return limiter
}

// RateLimit rejects clients that exceed their token bucket with 429.
func RateLimit(limiter *ClientRateLimiter) gin.HandlerFunc {
	retryAfter := "1"
	if limiter.limit > 0 && limiter.limit < 1 {
		retryAfter = strconv.Itoa(int(1/float64(limiter.limit)) + 1)
	}

	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewMCPError(
			domain.ErrRateLimit,
			"Rate limit exceeded",
			"",
			c.GetString(CorrelationIDKey),
		))
	}
}
