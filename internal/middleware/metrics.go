package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/service"
)

const scrapePath = "/metrics"

// Metrics records per-route HTTP timings into the metrics service. The
// scrape endpoint itself is excluded so Prometheus polling does not skew
// the request histograms. Unmatched routes are labelled by raw path so
// 404 traffic stays visible.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || strings.HasSuffix(c.Request.URL.Path, scrapePath) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
