package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"poker-platform/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 2.0, BurstSize: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client-1"), "request %d is within burst", i+1)
	}
	assert.False(t, rl.Allow("client-1"), "burst exhausted")

	// 500ms refills one token at 2/s.
	time.Sleep(550 * time.Millisecond)
	assert.True(t, rl.Allow("client-1"))
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1.0, BurstSize: 2, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		assert.True(t, rl.Allow("client-1"))
		assert.True(t, rl.Allow("client-2"))
	}
	assert.False(t, rl.Allow("client-1"))
	assert.False(t, rl.Allow("client-2"))
}

func TestRateLimiter_CleanupKeepsRecentClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 10.0, BurstSize: 10, CleanupInterval: 100 * time.Millisecond})
	defer rl.Stop()

	rl.Allow("idle")
	rl.Allow("busy")
	time.Sleep(60 * time.Millisecond)
	rl.Allow("busy")
	time.Sleep(60 * time.Millisecond)

	rl.cleanup()
	assert.Equal(t, 1, rl.LimiterCount())
}

func TestRateLimiter_ActionConfigCapsBursts(t *testing.T) {
	rl := NewRateLimiter(ActionRateLimiterConfig)
	defer rl.Stop()

	allowed := 0
	for i := 0; i < 15; i++ {
		if rl.Allow("user-1") {
			allowed++
		}
	}
	assert.GreaterOrEqual(t, allowed, 10)
	assert.Less(t, allowed, 15)
}

func TestRateLimiter_StopTwiceIsSafe(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig)
	rl.Allow("client-1")
	rl.Stop()
	rl.Stop()
	assert.Equal(t, 1, rl.LimiterCount())
}

func TestGin_RateLimitsPerUser(t *testing.T) {
	authService := auth.NewService(auth.Config{JWTSecret: "test-secret"})
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.1, BurstSize: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	r := gin.New()
	r.Use(Auth(authService), rl.Gin())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(UserIDKey)) })

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	alice, err := authService.GenerateToken("alice")
	require.NoError(t, err)
	bob, err := authService.GenerateToken("bob")
	require.NoError(t, err)

	w := call(alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, call(alice).Code)
	assert.Equal(t, http.StatusOK, call(bob).Code)

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("garbage").Code)
}

func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(DefaultRateLimiterConfig)
	defer rl.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rl.Allow("benchmark-client")
	}
}
