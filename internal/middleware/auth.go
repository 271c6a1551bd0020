package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"sketchfab-proxy/internal/auth"
)

const uidContextKey = "uid"

func UIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(uidContextKey)
	if !ok {
		return "", false
	}
	uid, ok := v.(string)
	return uid, ok && uid != ""
}

// RequireAuth gates a route on a valid identity token. The uid it stores in
// the context is the only caller identity handlers ever use; client-supplied
// uid fields are ignored everywhere.
func RequireAuth(cfg auth.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid id token"})
			c.Abort()
			return
		}

		claims, err := auth.VerifyToken(parts[1], cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid id token"})
			c.Abort()
			return
		}

		c.Set(uidContextKey, claims.UserID)
		c.Next()
	}
}
