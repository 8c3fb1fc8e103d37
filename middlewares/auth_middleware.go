// middlewares/auth_middleware.go
package middlewares

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware resolves the bearer token to an opaque caller id and
// aborts when it cannot. Token issuance happens upstream; this engine only
// verifies.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveCaller(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "stage": "authentication", "error": err.Error(), "request_id": c.GetString("requestID")})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalAuth resolves the caller id when a token is present but lets the
// request through either way. The analyze endpoint needs this: the preview
// sentinel runs extraction without an account, and the handler itself
// rejects unauthenticated persistence.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := resolveCaller(c); err == nil {
			c.Set("userID", userID)
		}
		c.Next()
	}
}

func resolveCaller(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("authorization header required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		return "", errors.New("server misconfigured: JWT_SECRET not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	// Prefer the standard subject claim, fall back to legacy names.
	for _, key := range []string{"sub", "userId", "email"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", errors.New("subject claim missing")
}
