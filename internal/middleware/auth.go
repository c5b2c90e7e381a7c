package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
)

// AuthMiddleware guards mutating routes with a single shared admin token.
type AuthMiddleware struct {
	log        *logger.Logger
	adminToken string
}

func NewAuthMiddleware(log *logger.Logger, adminToken string) *AuthMiddleware {
	return &AuthMiddleware{
		log:        log.With("middleware", "AuthMiddleware"),
		adminToken: adminToken,
	}
}

func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.adminToken == "" {
			am.log.Error("admin token not configured, rejecting request")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server auth not configured"})
			return
		}
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(am.adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
