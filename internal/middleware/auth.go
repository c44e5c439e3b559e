package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"chemequip/internal/auth"

	"github.com/gin-gonic/gin"
)

// UserKey holds the authenticated username in the gin context.
const UserKey = "user"

// AuthMiddleware accepts a bearer access token or HTTP Basic credentials.
func AuthMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		switch {
		case strings.HasPrefix(header, "Bearer "):
			claims, err := authenticator.ParseAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				abortUnauthorized(c, "Given token not valid for any token type")
				return
			}
			c.Set(UserKey, claims.Subject)

		case strings.HasPrefix(header, "Basic "):
			username, password, ok := c.Request.BasicAuth()
			if !ok {
				abortUnauthorized(c, "Invalid basic header")
				return
			}
			if err := authenticator.CheckCredentials(username, password); err != nil {
				if errors.Is(err, auth.ErrNotConfigured) {
					log.Printf("Basic auth attempted but authentication is not configured")
				}
				c.Header("WWW-Authenticate", `Basic realm="api"`)
				abortUnauthorized(c, "Invalid username/password.")
				return
			}
			c.Set(UserKey, username)

		default:
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
