package handlers

import (
	"context"
	"net/http"
	"time"

	"poker-platform/internal/middleware"

	"github.com/gin-gonic/gin"
)

// HandleMe returns the authenticated caller's account and balance.
func HandleMe(c *gin.Context, st Store) {
	user, err := st.GetUser(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// HandleHealth pings every backing service.
func HandleHealth(c *gin.Context, checks map[string]HealthCheck) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(checks))
	for name, check := range checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
}
