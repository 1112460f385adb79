package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/security"
)

// Gin context keys set by SessionAuthMiddleware.
const (
	ContextKeySession = "session"
	ContextKeyUserID  = "userID"
	ContextKeyRole    = "role"
)

// SessionAuthMiddleware validates bearer session tokens and stores their claims.
func SessionAuthMiddleware(issuer *security.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := issuer.ParseSession(token)
		if errJWT != nil {
			if errors.Is(errJWT, security.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextKeySession, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// SessionFromContext returns the claims stored by SessionAuthMiddleware.
func SessionFromContext(c *gin.Context) (*security.SessionClaims, bool) {
	value, ok := c.Get(ContextKeySession)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*security.SessionClaims)
	return claims, ok && claims != nil
}
