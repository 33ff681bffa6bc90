package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	BurstSize         int           `mapstructure:"burst_size"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

var DefaultRateLimiterConfig = RateLimiterConfig{
	RequestsPerSecond: 10.0,
	BurstSize:         20,
	CleanupInterval:   5 * time.Minute,
}

// ActionRateLimiterConfig is tighter: action submissions per user.
var ActionRateLimiterConfig = RateLimiterConfig{
	RequestsPerSecond: 5.0,
	BurstSize:         10,
	CleanupInterval:   5 * time.Minute,
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	limiters    map[string]*clientLimiter
	mu          sync.Mutex
	config      RateLimiterConfig
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter creates a new rate limiter with automatic cleanup
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultRateLimiterConfig.CleanupInterval
	}
	rl := &RateLimiter{
		limiters:    make(map[string]*clientLimiter),
		config:      config,
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow checks if a request from the given client ID should be allowed
func (rl *RateLimiter) Allow(clientID string) bool {
	return rl.AllowN(clientID, 1)
}

func (rl *RateLimiter) AllowN(clientID string, n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cl, exists := rl.limiters[clientID]
	if !exists {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize),
		}
		rl.limiters[clientID] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, n)
}

// LimiterCount returns the number of tracked clients.
func (rl *RateLimiter) LimiterCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup removes limiters that haven't been used recently
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.config.CleanupInterval)
	removed := 0
	for clientID, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, clientID)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Str("component", "ratelimit").Int("removed", removed).Msg("cleaned up inactive limiters")
	}
}

// Stop stops the cleanup goroutine (call when shutting down)
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Gin limits by authenticated user when there is one, otherwise by
// client IP. Mount it after the auth middleware to key by user.
func (rl *RateLimiter) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString(UserIDKey)
		if clientID == "" {
			clientID = c.ClientIP()
		}
		if !rl.Allow(clientID) {
			log.Warn().Str("component", "ratelimit").Str("client", clientID).
				Str("path", c.FullPath()).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, slow down"})
			return
		}
		c.Next()
	}
}
