package auth

import (
	"strings"

	"companion-lite/config"
	"companion-lite/internal/user"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity is the resolved caller attached to the request context.
// Administrative identities carry no UserID.
type Identity struct {
	UserID string
	Email  string
	Admin  bool
}

// IdentityFrom returns the authenticated identity set by Middleware
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}

// Middleware authenticates the bearer token and attaches the caller identity.
// User tokens are re-resolved against the store so blocks take effect on the
// next request, not at the next token refresh.
func Middleware(storage *user.Storage, cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.Auth.JWTSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(401, gin.H{"message": "Unauthorized"})
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"message": "Invalid or expired token"})
			return
		}

		if claims.Admin {
			if cfg.Auth.AdminEmail == "" || claims.Email != cfg.Auth.AdminEmail {
				c.AbortWithStatusJSON(401, gin.H{"message": "Unauthorized"})
				return
			}
			c.Set(identityKey, Identity{Email: claims.Email, Admin: true})
			c.Next()
			return
		}

		u, err := storage.GetByID(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"message": "User not found"})
			return
		}
		if u.IsBlocked {
			c.AbortWithStatusJSON(403, gin.H{"message": "Your account is blocked."})
			return
		}

		c.Set(identityKey, Identity{UserID: u.ID, Email: u.Email})
		c.Next()
	}
}

// AdminOnly rejects non-administrative identities
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok || !ident.Admin {
			c.AbortWithStatusJSON(403, gin.H{"message": "Admin access only"})
			return
		}
		c.Next()
	}
}
