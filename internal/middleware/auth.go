package middleware

import (
	"net/http"
	"strings"
	"time"

	"poker-platform/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// UserIDKey is where Auth leaves the caller's user id on the gin context.
const UserIDKey = "user_id"

// Auth validates the bearer token and sets UserIDKey.
func Auth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets UserIDKey when a valid bearer token is present and lets
// anonymous requests through. A token that fails validation is still a 401.
func OptionalAuth(authService *auth.Service) gin.HandlerFunc {
	required := Auth(authService)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

// Logger writes one zerolog line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.Str("component", "http").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_id", c.GetString(UserIDKey)).
			Msg("request")
	}
}
