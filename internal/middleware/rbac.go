package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

// SelfParam lets RBAC admit a caller whose user id equals the named route parameter.
type SelfParam string

// RBAC enforces role-based access control. Routes may also admit the caller when a route
// parameter names their own user id, e.g. RBAC([]models.UserRole{models.RoleAdmin}, "officerId").
func RBAC(roles []models.UserRole, selfParams ...SelfParam) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		claims, ok := value.(*models.JWTClaims)
		if !exists || !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		for _, param := range selfParams {
			if target := c.Param(string(param)); target != "" && target == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles admits only the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return RBAC(roles)
}
