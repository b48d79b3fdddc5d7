package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"todoitems/internal/adapter/http/helper"
	"todoitems/pkg/auth"
	ct "todoitems/pkg/context"
)

// JWTMiddleware requires a valid HS256 bearer token and stores its subject
// on the request's Current.
func JWTMiddleware(verifier *auth.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")

		if bearer == "" {
			helper.SendUnauthorizedError(c, "Unauthorized request")
			c.Abort()
			return
		}

		if !strings.HasPrefix(bearer, "Bearer ") {
			helper.SendUnauthorizedError(c, "Invalid authorization format")
			c.Abort()
			return
		}

		subject, err := verifier.VerifyToken(strings.TrimPrefix(bearer, "Bearer "))

		if err != nil {
			helper.SendUnauthorizedError(c, "Invalid access token")
			c.Abort()
			return
		}

		GetCurrent(c).Set(ct.SubjectKey, subject)
		c.Next()
	}
}
