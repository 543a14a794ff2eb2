package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/authz"
	"taskboard/internal/models"
)

// RequireAbility gates a route on the role-to-ability table. The services
// re-check ownership and role where it matters; this guard keeps obviously
// unauthorized requests out of the core.
func RequireAbility(ability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		role, _ := v.(int)
		if !authz.Can(models.UserRole(role), ability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not authorized to perform this action"})
			return
		}
		c.Next()
	}
}
