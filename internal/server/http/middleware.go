package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yoxo/internal/logging"
	"yoxo/internal/observability"
)

// RequestLogger logs each request and records its latency metric.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		observability.ObserveRequest(route, strconv.Itoa(status), elapsed.Seconds())
		logger.Info("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}
