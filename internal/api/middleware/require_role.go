package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turfline/leadchat/internal/utils"
)

// RequireAdmin gates the lead dashboard routes. Runs after JWTAuth, which
// stores the token's role claim on the context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("role")
		role, _ := v.(string)

		if !strings.EqualFold(strings.TrimSpace(role), "admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    utils.CodeForbidden,
				"message": "forbidden",
			})
			return
		}
		c.Next()
	}
}
