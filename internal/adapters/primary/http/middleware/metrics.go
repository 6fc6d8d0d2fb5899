package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"automl-orchestrator/internal/metrics"
)

// Metrics records every request on m by its matched route.
func Metrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
