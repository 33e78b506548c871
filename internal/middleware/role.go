package middleware

import (
	"net/http"

	"servicehub/internal/pkg/response"
	"servicehub/internal/pkg/roles"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user carries the role tag.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		roleStr, _ := role.(string)
		if !roles.Has(roleStr, requiredRole) {
			response.CustomError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// ProviderOnly requires the provider tag.
func ProviderOnly() gin.HandlerFunc {
	return RequireRole(roles.Provider)
}
