package middleware

import (
	"net/http"
	"strings"

	"cineseat/internal/shared/config"
	"cineseat/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth creates a JWT authentication middleware. Only provisioning
// endpoints are gated; the booking flow itself carries explicit user IDs.
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("user_id", claims["user_id"])
			c.Set("user_role", claims["role"])
		}

		c.Next()
	}
}

// RequireRole middleware checks if the authenticated user has the given role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		role, ok := userRole.(string)
		if !ok || role != requiredRole {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin middleware that requires the admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("ADMIN")
}
