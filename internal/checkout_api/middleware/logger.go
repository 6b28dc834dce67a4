package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger middleware logs HTTP request details including method, path, status,
// latency, client IP, and correlation ID if present. Health probes are not
// logged; load balancers hit that endpoint constantly.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		if path == "/health" {
			c.Next()
			return
		}

		correlationID := GetCorrelationID(c)

		requestLogger := logger
		if correlationID != "" {
			requestLogger = logger.With("correlation_id", correlationID)
		}

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		if raw != "" {
			path = path + "?" + raw
		}

		// Non-2xx on the webhook route means the provider will redeliver;
		// keep these visible at warn level.
		if provider := c.Param("provider"); provider != "" && statusCode >= 400 {
			requestLogger.Warn("Webhook request failed, provider will redeliver",
				"method", method,
				"path", path,
				"provider", provider,
				"status", statusCode,
				"latency", latency,
				"client_ip", clientIP,
			)
			return
		}

		requestLogger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
			"user_agent", c.Request.UserAgent(),
		)
	}
}
