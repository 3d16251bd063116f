package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"college/internal/identity"
)

const claimsKey = "claims"

// Guard authenticates requests from token cookies.
type Guard struct {
	issuer      *Issuer
	csrfProtect bool
}

// NewGuard creates a guard. With csrfProtect set, state-changing requests must
// echo the token's csrf value in the X-CSRF-TOKEN header.
func NewGuard(issuer *Issuer, csrfProtect bool) *Guard {
	return &Guard{issuer: issuer, csrfProtect: csrfProtect}
}

// Access requires a valid, unrevoked access token.
func (g *Guard) Access() gin.HandlerFunc { return g.require(KindAccess) }

// Refresh requires a valid, unrevoked refresh token.
func (g *Guard) Refresh() gin.HandlerFunc { return g.require(KindRefresh) }

func (g *Guard) require(kind Kind) gin.HandlerFunc {
	name := cookieName(kind)
	return func(c *gin.Context) {
		raw, err := c.Cookie(name)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing cookie \"" + name + "\""})
			return
		}

		claims, err := g.issuer.Verify(c.Request.Context(), raw, kind)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": verifyMessage(err)})
			return
		}

		if g.csrfProtect && stateChanging(c.Request.Method) {
			header := c.GetHeader(CSRFHeader)
			if header == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing CSRF token"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(header), []byte(claims.CSRF)) != 1 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "CSRF double submit tokens do not match"})
				return
			}
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRoles admits requests whose token role claim is one of roles. The
// claim is trusted as minted; it is not re-derived from the identity.
// Must run after Access.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		role := identity.ParseRole(claims.Role)
		if role == identity.RoleUnknown || !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by the guard.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

func stateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func verifyMessage(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, ErrRevoked):
		return "Token has been revoked"
	case errors.Is(err, ErrWrongKind):
		return "Wrong token type"
	default:
		return "Invalid token"
	}
}
