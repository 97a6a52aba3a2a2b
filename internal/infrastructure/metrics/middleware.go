package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware returns a gin middleware that records metrics for each request.
// Routes are labeled by their registered pattern, not the raw path, so path
// parameters do not explode the label cardinality.
func Middleware(collector *Collector, exporter *PrometheusExporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		collector.RecordRequest(route)
		if exporter != nil {
			exporter.RecordRequest(route, method)
		}

		duration := time.Since(start).Seconds()
		collector.RecordDuration(route, duration)
		if exporter != nil {
			exporter.RecordDuration(route, method, duration)
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			collector.RecordError(route)
			if exporter != nil {
				exporter.RecordError(route, method)
			}
		}
	}
}
