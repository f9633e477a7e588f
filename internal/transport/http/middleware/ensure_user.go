package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// UserFinder looks up an account by ID.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// EnsureUser runs after Auth. Tokens are stateless, so a token can outlive
// its account; this rejects tokens whose subject no longer exists. The
// lookup is bounded by lookupTimeout (0 means no extra bound) so it holds
// on routes that carry no request deadline of their own.
func EnsureUser(users UserFinder, logger *slog.Logger, lookupTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(UserIDKey)

		ctx := c.Request.Context()
		if lookupTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, lookupTimeout)
			defer cancel()
		}
		_, err := users.FindByID(ctx, userID)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, domain.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		case errors.Is(err, domain.ErrTimeout):
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
		default:
			logger.ErrorContext(c.Request.Context(), "ensure user lookup", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
		}
	}
}
