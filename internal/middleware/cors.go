package middleware

import (
	"time"

	"storefront-identity/internal/config"
	"storefront-identity/internal/gate"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the storefront and admin panel origins. The gate header
// is always allowed and the request id is always exposed.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     appendMissing(cfg.AllowedHeaders, gate.HeaderName),
		ExposeHeaders:    appendMissing(cfg.ExposedHeaders, RequestIDHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}

	return cors.New(corsConfig)
}

func appendMissing(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	out := make([]string, 0, len(values)+1)
	out = append(out, values...)
	return append(out, value)
}
