package middleware

import (
	"net/http"

	"taskpilot/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects requests whose authenticated actor does not hold one
// of the allowed roles. Must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Authorization required"})
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Error: "Insufficient permissions"})
	}
}
