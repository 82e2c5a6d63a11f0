package middleware

import (
	"net/http"
	"strings"

	"storefront-identity/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	AccountIDKey = "accountID"
	IsAdminKey   = "isAdmin"
)

// SessionVerifier validates a bearer session token.
type SessionVerifier interface {
	Verify(token string) (*utils.SessionClaims, error)
}

// AuthMiddleware requires a valid session token. The claims are stored under
// AccountIDKey and IsAdminKey; the account itself is not re-read, so a
// demotion only takes effect once the token expires.
func AuthMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(IsAdminKey, claims.IsAdmin)

		c.Next()
	}
}
