package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/edlflash/observability"
)

// HealthChecker produces the current health report.
type HealthChecker func(ctx context.Context) *observability.ServiceHealth

// Health returns a handler that reports service health including component
// statuses. A degraded service (e.g. no device attached) still answers 200;
// only a down service answers 503.
func Health(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := &observability.ServiceHealth{Status: observability.HealthStatusUp}
		if checker != nil {
			report = checker(c.Request.Context())
		}

		httpStatus := http.StatusOK
		if report.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     report.Status,
			"service":    report.Service,
			"version":    report.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": report.Components,
		})
	}
}
