package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "tesoro/internal/errors"
)

// AdminAPIKeyHeader carries the admin API key.
const AdminAPIKeyHeader = "X-API-Key"

// AdminAuthMiddleware creates a Gin middleware that validates the X-API-Key
// header against the configured admin API key.
func AdminAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrAdminNotConfigured)
			return
		}
		key := c.GetHeader(AdminAPIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
