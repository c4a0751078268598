package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	appLogger "github.com/JorgeDuranS/AppSegura/internal/infra/logger"
)

// IdentifierFunc extracts the identifier used to scope rate limits.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule configures a sliding-window limit for a particular identifier.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window limits on selected routes. Login
// throttling lives in the auth service because it must clear on success;
// this middleware covers everything else, such as registration.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// rateLimitedResponse is the 429 payload; it mirrors the API error shape.
type rateLimitedResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimit returns a Gin middleware enforcing the provided rule.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	if rule.Name == "" {
		rule.Name = "default"
	}

	return func(c *gin.Context) {
		if rl.store == nil || rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			c.Next()
			return
		}

		identifier, ok := rule.Identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		now := rl.now().UTC()
		key := fmt.Sprintf("%s:%s", rule.Name, identifier)

		if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
			rl.failOpen(c, rule.Name, identifier, err)
			return
		}
		count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
		if err != nil {
			rl.failOpen(c, rule.Name, identifier, err)
			return
		}

		if count >= rule.Limit {
			reset := now.Add(rule.Window)
			if oldest, found, err := rl.store.OldestAttempt(ctx, key, rule.Window, now); err == nil && found {
				reset = oldest.Add(rule.Window)
			}
			rl.respondRateLimited(c, rule, reset.Sub(now))
			return
		}

		if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
			rl.failOpen(c, rule.Name, identifier, err)
			return
		}

		remaining := rule.Limit - count - 1
		if remaining < 0 {
			remaining = 0
		}
		headers := c.Writer.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// failOpen lets the request through when the store misbehaves; blocking all
// traffic on a counter failure would be worse than missing a limit.
func (rl *RateLimiter) failOpen(c *gin.Context, rule, identifier string, err error) {
	rl.logger.Warn("rate limit check failed",
		zap.String("rule", rule),
		zap.String("identifier", appLogger.MaskIP(identifier)),
		zap.Error(err),
	)
	c.Next()
}

func (rl *RateLimiter) respondRateLimited(c *gin.Context, rule RateLimitRule, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	c.Writer.Header().Set("Retry-After", strconv.Itoa(seconds))

	c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitedResponse{
		Success:    false,
		Error:      fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds),
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}
