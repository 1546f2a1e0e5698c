package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"event_backend/internal/shared/identity"
)

// ContextIdentity is the gin context key holding the caller's identity.Identity.
const ContextIdentity = "identity"

// Verifier resolves a bearer token into an identity.
type Verifier interface {
	Verify(token string) (identity.Identity, error)
}

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return token, token != ""
}

// OptionalAuth resolves the caller when a valid bearer token is present and
// falls back to the anonymous identity otherwise. It never aborts.
func OptionalAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identity.Anonymous
		if token, ok := bearerToken(c); ok {
			if verified, err := v.Verify(token); err == nil {
				id = verified
			}
		}
		c.Set(ContextIdentity, id)
		c.Next()
	}
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		id, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextIdentity, id)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the identity set by AuthRequired holds role.
// It must be registered after AuthRequired.
func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if id.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if id.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by the auth middlewares, or the
// anonymous identity when none was set.
func IdentityFrom(c *gin.Context) identity.Identity {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return identity.Anonymous
	}
	id, ok := v.(identity.Identity)
	if !ok {
		return identity.Anonymous
	}
	return id
}
