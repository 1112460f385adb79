package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apphttp "github.com/itm-platform/itm-access/internal/http"
	permissions "github.com/itm-platform/itm-access/internal/http/api/admin/permissions"
	log "github.com/sirupsen/logrus"
)

// RoleLookup returns the current privileged role of a login id.
type RoleLookup interface {
	AdminRole(ctx context.Context, loginID string, groups []string) (string, error)
}

// adminPermissionMiddleware enforces role checks for admin routes. The role is re-read
// on every request so revoked assignments take effect before the session expires.
func adminPermissionMiddleware(roles RoleLookup) gin.HandlerFunc {
	permissionMap := permissions.DefinitionMap()

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}

		def, ok := permissionMap[permissions.Key(c.Request.Method, path)]
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}

		claims, okClaims := apphttp.SessionFromContext(c)
		if !okClaims {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}

		role, errRole := roles.AdminRole(c.Request.Context(), claims.UserID, claims.Groups)
		if errRole != nil {
			log.WithError(errRole).WithField("login", claims.UserID).Error("admin role lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "role lookup failed"})
			return
		}
		if !def.Allows(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}

		c.Set("adminRole", role)
		c.Next()
	}
}
