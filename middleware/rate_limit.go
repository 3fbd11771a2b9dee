package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// requestWindow tracks requests from an IP within the current window
type requestWindow struct {
	Count   int
	FirstAt time.Time
}

// RateLimiter manages per-IP rate limiting for the public read endpoints
type RateLimiter struct {
	mu           sync.RWMutex
	windows      map[string]*requestWindow
	maxRequests  int
	windowPeriod time.Duration
}

// Global rate limiter instance
var requestRateLimiter *RateLimiter

// InitRequestRateLimiter initializes the global request rate limiter
func InitRequestRateLimiter() {
	requestRateLimiter = NewRateLimiter(120, time.Minute)
	// Start cleanup goroutine
	go requestRateLimiter.startCleanup()
}

// NewRateLimiter creates a new rate limiter
// maxRequests: maximum requests allowed within the window
// windowPeriod: time window for counting requests
func NewRateLimiter(maxRequests int, windowPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:      make(map[string]*requestWindow),
		maxRequests:  maxRequests,
		windowPeriod: windowPeriod,
	}
}

// startCleanup periodically cleans up expired windows
func (rl *RateLimiter) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		rl.cleanup()
	}
}

// cleanup removes expired entries
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, window := range rl.windows {
		if now.Sub(window.FirstAt) > rl.windowPeriod {
			delete(rl.windows, ip)
		}
	}
}

// Allow records a request for the IP and reports whether it is within the
// limit, how many requests remain, and how long until the window resets.
func (rl *RateLimiter) Allow(ip string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	window, exists := rl.windows[ip]

	if !exists || now.Sub(window.FirstAt) > rl.windowPeriod {
		rl.windows[ip] = &requestWindow{Count: 1, FirstAt: now}
		return true, rl.maxRequests - 1, 0
	}

	window.Count++
	remaining := rl.maxRequests - window.Count
	if remaining < 0 {
		return false, 0, rl.windowPeriod - now.Sub(window.FirstAt)
	}
	return true, remaining, 0
}

// RequestRateLimitMiddleware creates a middleware limiting requests per IP
// on the public endpoints
func RequestRateLimitMiddleware() gin.HandlerFunc {
	// Ensure rate limiter is initialized
	if requestRateLimiter == nil {
		InitRequestRateLimiter()
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, remaining, retryAfter := requestRateLimiter.Allow(ip)

		// Set headers for client awareness
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
