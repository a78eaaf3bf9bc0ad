package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "lyre-server/internal/api/errors"
	"lyre-server/internal/app/auth"
)

// BearerAuth rejects requests without a valid device token. When no tokens
// are configured at all the check is disabled, which keeps local development
// friction-free.
func BearerAuth(verifier auth.TokenVerifier, enabled bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			HandleError(c, apierrors.NewUnauthorizedError("missing bearer token"))
			return
		}

		ok, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Error("token verification failed", zap.Error(err))
			HandleError(c, apierrors.NewServiceUnavailableError("token verification unavailable"))
			return
		}
		if !ok {
			HandleError(c, apierrors.NewUnauthorizedError("invalid device token"))
			return
		}

		c.Next()
	}
}
