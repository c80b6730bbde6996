package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/hotdesk-backend/internal/auth"
	"github.com/nekogravitycat/hotdesk-backend/internal/user"
)

// loadAdminFlag reads the admin flag of the authenticated user into the context.
// It aborts the request and returns false when the user cannot be resolved.
func loadAdminFlag(c *gin.Context, userService user.Service) bool {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	// Read from the database so that revoking admin takes effect before the token expires.
	u, err := userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return false
	}

	auth.SetAdmin(c, u.IsAdmin)
	return true
}

// ResolveAdmin records whether the authenticated user is an admin without
// rejecting anyone. It MUST be used after auth.AuthRequired middleware.
func ResolveAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadAdminFlag(c, userService) {
			return
		}
		c.Next()
	}
}

// RequireAdmin ensures the authenticated user is an admin.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadAdminFlag(c, userService) {
			return
		}
		if !auth.IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}
		c.Next()
	}
}
