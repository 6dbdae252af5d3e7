package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/EternisAI/datacollect/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "

	authMethodKey    = "auth_method"
	authMethodAPIKey = "api_key"
	authMethodToken  = "token"
)

// Auth accepts either a valid API key or a valid bearer token. An empty
// apiKey or jwtSecret disables that credential. With both empty every
// request passes.
func Auth(apiKey, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" && jwtSecret == "" {
			c.Next()
			return
		}

		if provided := c.GetHeader(apiKeyHeader); provided != "" && apiKey != "" {
			if auth.CheckAPIKey(provided, apiKey) {
				c.Set(authMethodKey, authMethodAPIKey)
				c.Next()
				return
			}
			slog.Warn("Invalid API key attempt",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		header := c.GetHeader("Authorization")
		if jwtSecret != "" && strings.HasPrefix(header, bearerPrefix) {
			claims, err := auth.ValidateToken(jwtSecret, strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(authMethodKey, authMethodToken)
			c.Set("subject", claims.Subject)
			c.Set("role", claims.Role)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The admin API key carries no role and is allowed everywhere.
		if method, _ := c.Get(authMethodKey); method == authMethodAPIKey {
			c.Next()
			return
		}

		role, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		userRole, ok := role.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		for _, r := range roles {
			if r == userRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
