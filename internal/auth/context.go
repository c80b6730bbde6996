package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUsername returns the authenticated user's username or empty string.
func GetUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

const ctxIsAdmin = "isAdmin"

// SetAdmin records whether the authenticated user is an admin.
func SetAdmin(c *gin.Context, isAdmin bool) {
	c.Set(ctxIsAdmin, isAdmin)
}

// IsAdmin reports whether an earlier middleware marked the user as an admin.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdmin)
}
