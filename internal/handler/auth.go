package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"college/internal/audit"
	"college/internal/auth"
	"college/internal/identity"
	"college/internal/metrics"
)

// Credentials resolves and verifies identities.
type Credentials interface {
	Lookup(ctx context.Context, loginID string) *identity.Identity
	Verify(ctx context.Context, loginID, password string) *identity.Identity
}

// Revoker writes to the revocation ledger.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
}

// AuthHandler implements login, refresh, logout and me.
type AuthHandler struct {
	creds   Credentials
	issuer  *auth.Issuer
	cookies auth.Cookies
	revoker Revoker
	audit   audit.Recorder
}

// NewAuthHandler wires the gateway. A nil recorder discards audit events.
func NewAuthHandler(creds Credentials, issuer *auth.Issuer, cookies auth.Cookies, revoker Revoker, recorder audit.Recorder) *AuthHandler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &AuthHandler{creds: creds, issuer: issuer, cookies: cookies, revoker: revoker, audit: recorder}
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// Login verifies credentials and sets a fresh token pair. Unknown login ids and
// wrong passwords produce the same 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindBody(c, &req) {
		return
	}
	if req.LoginID == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login_id and password are required"})
		return
	}

	ident := h.creds.Verify(c.Request.Context(), req.LoginID, req.Password)
	if ident == nil {
		h.record(c, "login", req.LoginID, "", "denied")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login_id or password"})
		return
	}

	role := identity.RoleFromLogin(ident.LoginID)
	pair, err := h.issuer.MintPair(ident.LoginID, role)
	if err != nil {
		log.WithError(err).WithField("login_id", ident.LoginID).Error("mint token pair failed")
		h.record(c, "login", ident.LoginID, role.String(), "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.cookies.SetPair(c, pair)
	h.record(c, "login", ident.LoginID, role.String(), "ok")
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": ident.Public()})
}

// Refresh rotates the pair: the presented refresh token is consumed and a new
// pair is minted with the role re-derived from the login id. If the ledger
// write fails no pair is minted, so a refresh token is never usable twice.
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	role := identity.RoleFromLogin(claims.Subject)

	consumed, err := h.revoker.Consume(c.Request.Context(), claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		h.record(c, "refresh", claims.Subject, role.String(), "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	if !consumed {
		h.record(c, "refresh", claims.Subject, role.String(), "denied")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
		return
	}

	pair, err := h.issuer.MintPair(claims.Subject, role)
	if err != nil {
		// The old refresh token is already burned; the client has to log in again.
		log.WithError(err).WithField("login_id", claims.Subject).Error("mint token pair failed")
		h.record(c, "refresh", claims.Subject, role.String(), "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.cookies.SetPair(c, pair)
	h.record(c, "refresh", claims.Subject, role.String(), "ok")
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed"})
}

// Logout revokes the refresh token, which also retires its access token, and
// clears the cookies. A failed ledger write is logged and the cookies are
// cleared regardless.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	outcome := "ok"
	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.WithError(err).WithField("login_id", claims.Subject).Warn("logout could not revoke refresh token")
		outcome = "error"
	}

	h.cookies.Clear(c)
	h.record(c, "logout", claims.Subject, claims.Role, outcome)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Me returns the caller's sanitized identity.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ident := h.creds.Lookup(c.Request.Context(), claims.Subject)
	if ident == nil {
		metrics.AuthEvents.WithLabelValues("me", "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	metrics.AuthEvents.WithLabelValues("me", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"user": ident.Public()})
}

func (h *AuthHandler) record(c *gin.Context, action, loginID, role, outcome string) {
	metrics.AuthEvents.WithLabelValues(action, outcome).Inc()
	h.audit.Record(c.Request.Context(), audit.Event{
		Action:     action,
		LoginID:    loginID,
		Role:       role,
		Outcome:    outcome,
		ClientIP:   c.ClientIP(),
		OccurredAt: time.Now().UTC(),
	})
}
