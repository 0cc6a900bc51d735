package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/response"
)

// CtxUserIDKey is the gin context key carrying the authenticated user id.
const CtxUserIDKey = "userID"

const bearerPrefix = "Bearer "

// Auth is the sole authorization gate for the profile surface. It accepts
// exactly `Authorization: Bearer <token>` (case-sensitive prefix, single
// space), verifies the token, and binds the subject id into the request
// context. Missing/wrong-scheme/empty token and present-but-invalid token
// both abort with 401, but with distinct messages.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := extractBearer(c.GetHeader("Authorization"))
		if !found {
			response.AbortError(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := jwt.Verify(token)
		if err != nil {
			// err is one of the verifier's failure classes; it never
			// contains the token or the secret.
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func extractBearer(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.HasPrefix(token, " ") {
		return "", false
	}
	return token, true
}

// UserID reads the bound user id from the gin context.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(CtxUserIDKey)
}
