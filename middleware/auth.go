package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/cache"
	"github.com/studyhive/server/config"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Auth validates the Bearer JWT token and checks the session cache.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := authenticate(ctx, sec, c)
		if !ok {
			return
		}
		ctx.Set(UserIDKey, claims.UserID)
		ctx.Set(RoleKey, claims.Role)
		ctx.Next()
	}
}

// RequireRole validates the token like Auth and additionally requires the
// claims role to be one of the given roles. Used for the admin console.
func RequireRole(sec config.SecurityConfig, c cache.Cache, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(ctx *gin.Context) {
		claims, ok := authenticate(ctx, sec, c)
		if !ok {
			return
		}
		if !allowed[claims.Role] {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		ctx.Set(UserIDKey, claims.UserID)
		ctx.Set(RoleKey, claims.Role)
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, sec config.SecurityConfig, c cache.Cache) (*Claims, bool) {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return nil, false
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	claims, err := ParseToken(tokenStr, sec.JWTSecret)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return nil, false
	}

	// Check session still valid in cache.
	sessionKey := "session:" + tokenStr
	cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	exists, err := c.Exists(cacheCtx, sessionKey)
	if err != nil || !exists {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return nil, false
	}
	return claims, true
}

// GetUserID retrieves the authenticated user ID from the Gin context.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(string)
	}
	return ""
}

// GetRole retrieves the authenticated role from the Gin context.
func GetRole(c *gin.Context) string {
	if v, exists := c.Get(RoleKey); exists {
		return v.(string)
	}
	return ""
}
