package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/models"
)

const userIDKey = "user_id"

// RequireUser extracts the authenticated user id from the X-User-ID header.
// Auth itself happens upstream (reverse proxy / identity provider); this
// service only consumes the opaque subject.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireUser
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RequireAdmin allows only users whose profile carries the admin flag
func RequireAdmin(db *models.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := db.GetUserProfile(UserID(c))
		if err != nil || !profile.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the current user has the admin flag
func IsAdmin(c *gin.Context, db *models.Database) bool {
	profile, err := db.GetUserProfile(UserID(c))
	return err == nil && profile.Admin
}
