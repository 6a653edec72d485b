package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports per-dependency availability, keyed by name.
type HealthChecker func(ctx context.Context) map[string]bool

// Health reports liveness. The service is healthy while it can answer;
// unavailable dependencies are listed but only degrade the status.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		var deps map[string]bool
		if checker != nil {
			deps = checker(c.Request.Context())
			for _, ok := range deps {
				if !ok {
					status = "degraded"
					break
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": deps,
		})
	}
}
