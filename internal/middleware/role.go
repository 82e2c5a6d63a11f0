package middleware

import (
	"net/http"

	"storefront-identity/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(IsAdminKey); !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		if !c.GetBool(IsAdminKey) {
			utils.ErrorResponse(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OwnerOrAdmin lets a session through when it belongs to the account named by
// the param route parameter, or when it is an admin session. It must run
// after AuthMiddleware.
func OwnerOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetString(AccountIDKey)
		if accountID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		if !c.GetBool(IsAdminKey) && accountID != c.Param(param) {
			utils.ErrorResponse(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
