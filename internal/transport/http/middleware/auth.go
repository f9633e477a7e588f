package middleware

import (
	"net/http"
	"strings"

	"github.com/ErlanBelekov/healthcover-api/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// UserIDKey is the gin context key holding the authenticated user's ID (int64).
const UserIDKey = "userID"

type authenticator interface {
	Authenticate(rawToken string) (int64, error)
}

// Auth validates a Bearer session token. The user ID is stored under
// UserIDKey in the gin context and in the request context for logging.
func Auth(auth authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		rawToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, err := auth.Authenticate(rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
