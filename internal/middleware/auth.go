package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wizmedik/booking-api/internal/config"
	"github.com/wizmedik/booking-api/internal/httperr"
)

const (
	ContextUserID     = "userID"
	ContextProviderID = "providerID"
	ContextUserRole   = "userRole"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "expected a bearer token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "token is invalid or expired")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "token claims are unreadable")
			c.Abort()
			return
		}

		userID, ok1 := claims["sub"].(float64)
		providerID, ok2 := claims["providerId"].(float64)
		role, _ := claims["role"].(string)
		if !ok1 || !ok2 {
			httperr.Unauthorized(c, "invalid_token_payload", "token is missing user or provider")
			c.Abort()
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextProviderID, uint(providerID))
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// ProviderID returns the provider of the authenticated user.
func ProviderID(c *gin.Context) uint {
	return c.GetUint(ContextProviderID)
}

func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
