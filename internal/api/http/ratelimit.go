package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	codeRateLimited = "RATE_LIMITED"
	limiterIdleTTL  = 10 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	clients     map[string]*ipLimiter
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(perMinute) / time.Minute.Seconds()),
		burst:   burst,
		clients: make(map[string]*ipLimiter),
		now:     time.Now,
	}
}

// Handle rejects callers that exhausted their bucket with 429.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	limiter := rl.get(c.IP())
	if limiter.Allow() {
		return c.Next()
	}
	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()
	retryAfter := max(int(delay.Seconds()), 1)
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
	return apperrors.NewDomainError(codeRateLimited, "too many requests", fiber.StatusTooManyRequests,
		map[string]any{"retryAfterSeconds": retryAfter})
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > limiterIdleTTL {
		for k, v := range rl.clients {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastCleanup = now
	}

	entry, ok := rl.clients[key]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}
