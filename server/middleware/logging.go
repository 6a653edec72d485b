package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fxgurv/ALONE/logger"
)

// RequestLogger logs every request with method, path, status and duration.
// The health check path is skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
		}
		if id := c.Writer.Header().Get(HeaderRequestID); id != "" {
			fields[logger.FieldRequestID] = id
		}
		logByStatus(log, fields, status)
	}
}

// logByStatus logs at a level derived from the HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
