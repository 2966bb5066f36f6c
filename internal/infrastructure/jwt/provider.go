package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-totp/internal/config"
	"github.com/go-auth-totp/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Token-use discriminators carried in the token_use claim.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
	UseSession = "session" // password-only login, 24h nominal lifetime
)

// Claims holds the JWT payload fields.
type Claims struct {
	TokenUse string `json:"token_use"`
	Email    string `json:"email,omitempty"` // session tokens only
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs. All three token kinds share the
// same signing key and claim structure; only lifetime and token_use differ.
type Provider struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	sessionTTL time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSigningKey == "" {
		return nil, errors.New("JWT signing key is required")
	}
	return &Provider{
		signingKey: []byte(cfg.JWTSigningKey),
		accessTTL:  time.Duration(cfg.AccessTokenTTL) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenTTL) * time.Hour,
		sessionTTL: time.Duration(cfg.SessionTokenTTL) * time.Hour,
	}, nil
}

// IssueAccessToken mints a short-lived token for the given user.
func (p *Provider) IssueAccessToken(userID string) (string, error) {
	return p.sign(userID, "", UseAccess, p.accessTTL)
}

// IssueRefreshToken mints a long-lived token for the given user.
func (p *Provider) IssueRefreshToken(userID string) (string, error) {
	return p.sign(userID, "", UseRefresh, p.refreshTTL)
}

// IssueSessionToken mints the password-only login token. It carries the
// user's email in addition to the subject.
func (p *Provider) IssueSessionToken(userID, email string) (string, error) {
	return p.sign(userID, email, UseSession, p.sessionTTL)
}

func (p *Provider) sign(userID, email, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenUse: use,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.signingKey)
}

// Verify checks signature and expiry. Malformed tokens, signature mismatches
// and expired tokens all collapse to domain.ErrInvalidToken; nothing more
// specific is leaked to callers.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrInvalidToken)
	}
	return claims, nil
}
