package middleware

import (
	"time"

	"storefront-identity/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingMiddleware logs each request with structured fields. The matched
// route template is logged instead of the raw path and the query string is
// omitted, since both can carry reset tokens or the admin key.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		ip := c.ClientIP()
		userAgent := c.Request.UserAgent()

		requestID := GetRequestID(c)
		log := logger.WithRequestID(requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("route", route),
			zap.String("ip", ip),
			zap.String("user_agent", userAgent),
			zap.Int("status_code", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if accountID := c.GetString(AccountIDKey); accountID != "" {
			fields = append(fields, zap.String("account_id", accountID))
		}
		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			fields = append(fields, zap.String("error", errorMessage))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("Request completed with server error", fields...)
		case status >= 400:
			log.Warn("Request completed with client error", fields...)
		default:
			log.Info("Request completed successfully", fields...)
		}
	}
}
