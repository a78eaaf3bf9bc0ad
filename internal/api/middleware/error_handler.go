package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "lyre-server/internal/api/errors"
)

// ErrorHandler converts panics into structured APIError responses so a bug
// in one handler cannot leak a stack trace to the client.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		var apiErr *apierrors.APIError
		switch err := recovered.(type) {
		case *apierrors.APIError:
			apiErr = err
			apiErr.RequestID = requestID
		case error:
			logger.Error("internal server error",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			apiErr = &apierrors.APIError{
				Kind:      apierrors.KindInternal,
				Message:   "internal server error",
				RequestID: requestID,
			}
		default:
			logger.Error("unknown panic",
				zap.String("request_id", requestID),
				zap.Any("recovered", recovered))
			apiErr = &apierrors.APIError{
				Kind:      apierrors.KindInternal,
				Message:   "internal server error",
				RequestID: requestID,
			}
		}

		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes an error response for a known *APIError and panics
// otherwise so the recovery middleware takes over.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if apiErr, ok := err.(*apierrors.APIError); ok {
		apiErr.RequestID = c.GetString("request_id")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
		return
	}
	panic(err)
}
