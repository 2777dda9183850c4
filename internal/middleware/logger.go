package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matcha/pkg/logger"
)

// RequestLogger logs one line per request through the process logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logger.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error(c.Request.Context(), "http request", fields...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "http request", fields...)
		default:
			logger.Info(c.Request.Context(), "http request", fields...)
		}
	}
}
