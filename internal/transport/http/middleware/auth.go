package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/iamasit07/dm-chat/pkg/httputil"
)

const (
	ContextUsername = "username"
	ContextToken    = "token"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware requires a valid bearer token and stores the username and raw token in the gin context.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := httputil.BearerToken(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": domain.CodeTokenInvalid})
			return
		}

		username, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.Reason(err), "code": domain.ErrorCode(err)})
			return
		}

		c.Set(ContextUsername, username)
		c.Set(ContextToken, token)
		c.Next()
	}
}
