package middleware

import (
	"strings"

	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// IdentityMiddleware attaches the bearer token's identity to the request.
// Requests without a token continue as anonymous guests; a token that is
// present but invalid is rejected.
func IdentityMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(utils.IdentityContextKey, models.Identity{})
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.LogError("Invalid Bearer token format")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		identity, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			utils.LogError("Invalid token: %v", err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		utils.LogDebug("Authenticated %s %s", identity.Role, identity.UserID)
		c.Set(utils.IdentityContextKey, identity)
		c.Next()
	}
}

// AuthMiddleware requires an authenticated identity.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).Anonymous() {
			utils.LogError("Missing Authorization header")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware requires an admin identity.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.LogInfo("AdminMiddleware called")

		identity := IdentityFrom(c)
		if identity.Anonymous() {
			utils.LogError("Admin route called without a token")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			utils.LogError("Non-admin user attempted admin access: %s", identity.UserID)
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// IdentityFrom returns the request's identity, anonymous when none was set.
func IdentityFrom(c *gin.Context) models.Identity {
	if v, ok := c.Get(utils.IdentityContextKey); ok {
		if identity, ok := v.(models.Identity); ok {
			return identity
		}
	}
	return models.Identity{}
}
