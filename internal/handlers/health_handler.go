package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger is the part of the store the health check needs
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports database connectivity for GET /health
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logrus.WithError(err).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":    false,
				"message":    "Database unavailable",
				"db":         "disconnected",
				"error_code": "internal_error",
			})
			return
		}

		respond(c, http.StatusOK, "API healthy", gin.H{"db": "connected"})
	}
}
