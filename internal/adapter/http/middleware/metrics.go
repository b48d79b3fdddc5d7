package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"todoitems/internal/core/telemetry"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		metrics.IncrementActiveRequests(ctx)
		defer metrics.DecrementActiveRequests(ctx)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordRequest(ctx, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
