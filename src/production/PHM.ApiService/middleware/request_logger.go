package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
)

const (
	RequestIDHeader                = "X-Request-ID"
	RequestIDContextKey contextKey = "request_id"
)

// RequestID reuses an inbound X-Request-ID or assigns a fresh one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Set(string(RequestIDContextKey), id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(string(RequestIDContextKey))
}

// RequestLogger writes one access log line per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Logger.Info()
		switch {
		case status >= 500:
			event = log.Logger.Error()
		case status >= 400:
			event = log.Logger.Warn()
		}

		event.
			Str("request_id", RequestIDFromContext(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
