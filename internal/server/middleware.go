package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orgball2608/insta-profile-proxy/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// requestID reuses the caller's X-Request-ID or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDHeader),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", args...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", args...)
		default:
			log.Debug("Request served", args...)
		}
	}
}

func recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error("Panic while handling request", "path", c.Request.URL.Path, "panic", err, "request_id", c.GetString(requestIDHeader))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	})
}
