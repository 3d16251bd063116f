package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"college/internal/identity"
)

// Token verification errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongKind    = errors.New("wrong token type")
	ErrRevoked      = errors.New("token has been revoked")
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims represents the JWT payload. Subject is the login id and ID the jti.
type Claims struct {
	Role string `json:"role"`
	Kind Kind   `json:"type"`
	CSRF string `json:"csrf"`
	// Session is set on access tokens to the jti of the refresh token minted
	// with it, so revoking the refresh token also retires its access token.
	Session string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Token is a signed token plus the claims it carries.
type Token struct {
	Raw    string
	Claims Claims
}

// ExpiresAt returns the absolute expiry of the token.
func (t Token) ExpiresAt() time.Time {
	if t.Claims.ExpiresAt == nil {
		return time.Time{}
	}
	return t.Claims.ExpiresAt.Time
}

// Pair holds the access and refresh tokens minted together.
type Pair struct {
	Access  Token
	Refresh Token
}

// RevocationChecker reports whether any of the given token ids is revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, ids ...string) bool
}

// Settings configures token minting.
type Settings struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer mints and verifies HS256 tokens.
type Issuer struct {
	key      []byte
	settings Settings
	revoked  RevocationChecker
}

// NewIssuer creates an issuer. revoked is consulted on every verification.
func NewIssuer(settings Settings, revoked RevocationChecker) *Issuer {
	return &Issuer{key: []byte(settings.Secret), settings: settings, revoked: revoked}
}

// MintPair issues a fresh access/refresh pair for loginID carrying role.
func (i *Issuer) MintPair(loginID string, role identity.Role) (Pair, error) {
	now := time.Now()

	refresh, err := i.sign(Claims{
		Role: role.String(),
		Kind: KindRefresh,
		CSRF: uuid.NewString(),
		RegisteredClaims: i.registered(loginID, now, i.settings.RefreshTTL),
	})
	if err != nil {
		return Pair{}, err
	}

	access, err := i.sign(Claims{
		Role:             role.String(),
		Kind:             KindAccess,
		CSRF:             uuid.NewString(),
		Session:          refresh.Claims.ID,
		RegisteredClaims: i.registered(loginID, now, i.settings.AccessTTL),
	})
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

// Verify validates signature, issuer, expiry and kind of raw, then checks the
// token's jti (and session id) against the revocation ledger.
func (i *Issuer) Verify(ctx context.Context, raw string, kind Kind) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(i.settings.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return Claims{}, ErrWrongKind
	}
	if i.revoked != nil && i.revoked.IsRevoked(ctx, claims.ID, claims.Session) {
		return Claims{}, ErrRevoked
	}
	return *claims, nil
}

func (i *Issuer) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.settings.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) sign(claims Claims) (Token, error) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return Token{}, err
	}
	return Token{Raw: raw, Claims: claims}, nil
}
