// Package auth validates JWT tokens issued by the QuckApp auth-service and
// provides the shared HTTP middleware (request IDs, request logging, CORS).
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys used to store claims in the Gin context.
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyClaims = "claims"
)

// Claims represents the JWT claims structure issued by auth-service.
type Claims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// Config holds configuration for the auth middleware.
type Config struct {
	// JWTSecret is the HMAC secret used to verify token signatures.
	JWTSecret string

	// Issuer is the expected token issuer. Tokens with a different issuer
	// are rejected.
	Issuer string

	// SkipPaths lists URL paths that skip authentication.
	SkipPaths []string
}

// DefaultConfig returns a Config with standard QuckApp defaults.
func DefaultConfig(jwtSecret string) Config {
	return Config{
		JWTSecret: jwtSecret,
		Issuer:    "quckapp-auth",
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Auth returns a Gin middleware that validates JWT Bearer tokens and
// populates the context with caller claims.
func Auth(cfg Config) gin.HandlerFunc {
	skipSet := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipSet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipSet[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token issuer"})
			return
		}

		c.Set(ContextKeyUserID, claims.Sub)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetUserID returns the authenticated caller's user ID from the context.
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}
