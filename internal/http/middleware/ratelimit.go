package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultRateLimitKeys bounds how many client buckets are tracked at once.
// The least recently seen client is forgotten first.
const DefaultRateLimitKeys = 10000

// RateLimiter is a process-local, per-client-IP token bucket limiter.
// Buckets live in a bounded LRU, so memory stays flat under IP churn.
type RateLimiter struct {
	rps        rate.Limit
	burst      int
	retryAfter string

	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter builds a limiter refilling rps tokens per second with the
// given burst (coerced to at least 1). maxKeys <= 0 selects
// DefaultRateLimitKeys.
func NewRateLimiter(rps float64, burst, maxKeys int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if maxKeys <= 0 {
		maxKeys = DefaultRateLimitKeys
	}
	buckets, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &RateLimiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		retryAfter: retryAfterFor(rps),
		buckets:    buckets,
	}
}

// retryAfterFor is the whole number of seconds until one token refills.
func retryAfterFor(rps float64) string {
	if rps <= 0 {
		return "60"
	}
	s := int(math.Ceil(1 / rps))
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok := rl.buckets.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets.Add(key, lim)
	return lim
}

// Handler rejects requests over the client's budget with 429 and the
// standard error envelope (code "too_many_requests").
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.bucket(c.ClientIP()).Allow() {
			c.Next()
			return
		}
		LoggerFrom(c).Warn().Str("client_ip", c.ClientIP()).Msg("rate limited")
		c.Header("Retry-After", rl.retryAfter)
		abortJSON(c, http.StatusTooManyRequests, "", "too_many_requests", "rate limit exceeded")
	}
}
