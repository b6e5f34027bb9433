package middleware

import (
	"context"
	"net/http"
	"strings"

	userRepo "taskpilot/database/repository/user"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const actorContextKey = "actor"

// JWTAuthMiddleware validates the bearer token, checks the user is still
// active and stores the resulting Actor in the request context. Active-user
// lookups are cached in Redis so a deactivated account stops authenticating
// within the cache TTL.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Authorization required"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Authorization required"})
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid or expired token"})
			return
		}

		if !isUserActive(c.Request.Context(), users, claims.UserID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Account is not active"})
			return
		}

		c.Set(actorContextKey, models.Actor{
			ID:        claims.UserID,
			Role:      claims.Role,
			IPAddress: getClientIP(c),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Next()
	}
}

// isUserActive checks the auth cache first, then the database. A cache
// failure degrades to a DB lookup rather than rejecting the request.
func isUserActive(ctx context.Context, users userRepo.UserRepository, userID string) bool {
	cacheKey := utils.AuthCachePrefix + userID

	authCache := utils.GetAuthCacheClient()
	if authCache != nil {
		val, err := authCache.Get(ctx, cacheKey).Result()
		if err == nil {
			return val == "1"
		}
		if err != redis.Nil {
			utils.GetLogger().Warn("Auth cache lookup failed, falling back to DB", zap.Error(err))
		}
	}

	u, err := users.GetByID(userID)
	if err != nil {
		utils.GetLogger().Error("Auth DB lookup failed", zap.Error(err))
		return false
	}
	active := u != nil && u.IsActive

	if authCache != nil {
		val := "0"
		if active {
			val = "1"
		}
		_ = authCache.Set(ctx, cacheKey, val, utils.AuthCacheTTL).Err()
	}
	return active
}

// GetActor extracts the authenticated actor placed by JWTAuthMiddleware.
func GetActor(c *gin.Context) (models.Actor, bool) {
	val, exists := c.Get(actorContextKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := val.(models.Actor)
	return actor, ok
}
