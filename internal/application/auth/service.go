package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-totp/internal/domain"
	jwtinfra "github.com/go-auth-totp/internal/infrastructure/jwt"
	"github.com/go-auth-totp/internal/pkg/totp"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TOTPLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"required,otpcode"`
}

// LoginResult is the outcome of a password-only login attempt. When the
// account has a confirmed second factor, no token is issued and the caller
// must complete LoginTwoFactor instead.
type LoginResult struct {
	TwoFactorRequired bool
	SessionToken      string
	User              *domain.User
}

// TokenPair is issued once both factors have been presented.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginTwoFactor(ctx context.Context, req TOTPLoginRequest) (*TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type passwordHasher interface {
	Verify(plaintext, hash string) bool
}

type tokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	IssueSessionToken(userID, email string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type service struct {
	repo       userStore
	hasher     passwordHasher
	tokens     tokenIssuer
	totpParams totp.Params
}

type ServiceDeps struct {
	UserRepo   userStore
	Hasher     passwordHasher
	Tokens     tokenIssuer
	TOTPParams totp.Params
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.UserRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		totpParams: deps.TOTPParams,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if u.TOTPEnabled {
		return &LoginResult{TwoFactorRequired: true, User: u}, nil
	}
	token, err := s.tokens.IssueSessionToken(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{SessionToken: token, User: u}, nil
}

func (s *service) LoginTwoFactor(ctx context.Context, req TOTPLoginRequest) (*TokenPair, *domain.User, error) {
	u, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, nil, err
	}
	if !u.TOTPEnabled || u.TOTPSecret == "" {
		return nil, nil, fmt.Errorf("two-factor authentication is not enabled: %w", domain.ErrInvalidState)
	}
	ok, err := totp.Validate(req.Code, u.TOTPSecret, time.Now(), s.totpParams)
	if err != nil {
		return nil, nil, fmt.Errorf("stored secret unusable: %w", domain.ErrInvalidState)
	}
	if !ok {
		return nil, nil, fmt.Errorf("invalid code: %w", domain.ErrInvalidCredential)
	}
	access, err := s.tokens.IssueAccessToken(u.UserID)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(u.UserID)
	if err != nil {
		return nil, nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, u, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenUse != jwtinfra.UseRefresh {
		return "", fmt.Errorf("not a refresh token: %w", domain.ErrInvalidToken)
	}
	return s.tokens.IssueAccessToken(claims.Subject)
}

// authenticate resolves the user and checks the password. Unknown email and
// wrong password both map to ErrInvalidCredential so responses don't reveal
// which emails are registered.
func (s *service) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", domain.ErrInvalidCredential)
		}
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrInvalidCredential)
	}
	return u, nil
}
