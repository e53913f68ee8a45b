package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter holds per-IP token buckets.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter pool. r is requests per second per IP,
// b is the burst size.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    b,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = limiter
	}

	return limiter
}

// cleanupOldLimiters caps the pool; a full reset is crude but keeps memory
// bounded without tracking last-used times.
func (rl *RateLimiter) cleanupOldLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		if len(rl.limiters) > 10000 {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware gates every request through the per-IP bucket.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	go rl.cleanupOldLimiters()

	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// MaxBytesMiddleware limits the size of request bodies.
func MaxBytesMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body too large",
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// postingWindow is one posting-rate threshold for statuses/update.
type postingWindow struct {
	name  string
	span  time.Duration
	limit int
}

func postingWindows(c *apiContext) []postingWindow {
	conf := c.env.Conf.Conf
	return []postingWindow{
		{"daily", 24 * time.Hour, conf.PostsPerDay},
		{"weekly", 7 * 24 * time.Hour, conf.PostsPerWeek},
		{"monthly", 30 * 24 * time.Hour, conf.PostsPerMonth},
	}
}

// checkPostingRate enforces the posting thresholds in window order; the
// first exceeded one names the refusal. A zero limit disables its window.
func checkPostingRate(c *apiContext) error {
	now := time.Now()
	for _, w := range postingWindows(c) {
		if w.limit <= 0 {
			continue
		}
		err, count := c.env.Store.CountPostsSince(c.actor.Id, now.Add(-w.span))
		if err != nil {
			return InternalError("could not evaluate posting rate")
		}
		if count >= w.limit {
			return TooManyRequests(w.name + " posting limit reached")
		}
	}
	return nil
}

// rateLimitView is the account/rate_limit_status payload.
type rateLimitView struct {
	RemainingHits      int    `json:"remaining_hits" xml:"remaining_hits"`
	HourlyLimit        int    `json:"hourly_limit" xml:"hourly_limit"`
	ResetTime          string `json:"reset_time" xml:"reset_time"`
	ResetTimeInSeconds int64  `json:"reset_time_in_seconds" xml:"reset_time_in_seconds"`
}

// rateLimitStatus reports the headroom left under the strictest posting
// window. Clients poll this before composing.
func rateLimitStatus(c *apiContext) (interface{}, error) {
	now := time.Now()

	remaining := -1
	limit := 0
	reset := now

	for _, w := range postingWindows(c) {
		if w.limit <= 0 {
			continue
		}
		err, count := c.env.Store.CountPostsSince(c.actor.Id, now.Add(-w.span))
		if err != nil {
			return nil, InternalError("could not evaluate posting rate")
		}
		left := w.limit - count
		if left < 0 {
			left = 0
		}
		if remaining < 0 || left < remaining {
			remaining = left
			limit = w.limit
			reset = now.Add(w.span)
		}
	}

	// No window configured means unconstrained posting.
	if remaining < 0 {
		remaining = 150
		limit = 150
		reset = now.Add(time.Hour)
	}

	return &rateLimitView{
		RemainingHits:      remaining,
		HourlyLimit:        limit,
		ResetTime:          reset.UTC().Format(time.RFC3339),
		ResetTimeInSeconds: reset.Unix(),
	}, nil
}
