package twofactor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-totp/internal/domain"
	"github.com/go-auth-totp/internal/pkg/qr"
	"github.com/go-auth-totp/internal/pkg/totp"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTOTPSecret        = "totp_secret"
	fieldTOTPPendingSecret = "totp_pending_secret"
	fieldTOTPEnabled       = "totp_enabled"
)

// EnrollmentResult is returned by Begin. The secret is shown once so the
// user can enter it manually when QR scanning is not an option.
type EnrollmentResult struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"` // PNG data URI
}

type Service interface {
	// Begin generates a secret and stores it in a pending, unconfirmed
	// state. The account is not marked enrolled until Confirm succeeds.
	Begin(ctx context.Context, userID string) (*EnrollmentResult, error)
	// Confirm validates the first code against the pending secret and, on
	// success, commits it as the active secret.
	Confirm(ctx context.Context, userID, code string) error
	// Disable turns the second factor off. A currently valid code is
	// required so a stolen session alone cannot weaken the account.
	Disable(ctx context.Context, userID, code string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo       userStore
	mailer     mailer
	issuer     string
	totpParams totp.Params
}

type ServiceDeps struct {
	UserRepo   userStore
	Mailer     mailer
	Issuer     string
	TOTPParams totp.Params
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.UserRepo,
		mailer:     deps.Mailer,
		issuer:     deps.Issuer,
		totpParams: deps.TOTPParams,
	}
}

func (s *service) Begin(ctx context.Context, userID string) (*EnrollmentResult, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.TOTPEnabled {
		return nil, fmt.Errorf("two-factor authentication already enabled: %w", domain.ErrConflict)
	}
	secret, err := totp.NewSecret()
	if err != nil {
		return nil, err
	}
	// A repeated Begin simply overwrites the previous pending secret.
	if err := s.repo.Update(ctx, userID, map[string]interface{}{
		fieldTOTPPendingSecret: secret,
	}); err != nil {
		return nil, err
	}
	uri := totp.KeyURI(secret, u.Email, s.issuer, s.totpParams)
	image, err := qr.DataURI(uri, qr.DefaultSize)
	if err != nil {
		return nil, err
	}
	return &EnrollmentResult{Secret: secret, URI: uri, QRCode: image}, nil
}

func (s *service) Confirm(ctx context.Context, userID, code string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.TOTPEnabled {
		return fmt.Errorf("two-factor authentication already enabled: %w", domain.ErrConflict)
	}
	if u.TOTPPendingSecret == "" {
		return fmt.Errorf("no enrollment in progress: %w", domain.ErrInvalidState)
	}
	ok, err := totp.Validate(code, u.TOTPPendingSecret, time.Now(), s.totpParams)
	if err != nil {
		return fmt.Errorf("pending secret unusable: %w", domain.ErrInvalidState)
	}
	if !ok {
		// Pending secret stays as-is; the user may retry with a fresh code.
		return fmt.Errorf("invalid code: %w", domain.ErrInvalidCredential)
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{
		fieldTOTPSecret:        u.TOTPPendingSecret,
		fieldTOTPPendingSecret: "",
		fieldTOTPEnabled:       true,
	}); err != nil {
		return err
	}
	s.notify(u.Email, "Two-factor authentication enabled",
		"Two-factor authentication was just enabled on your account. If this wasn't you, reset your password immediately.")
	return nil
}

func (s *service) Disable(ctx context.Context, userID, code string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !u.TOTPEnabled || u.TOTPSecret == "" {
		return fmt.Errorf("two-factor authentication is not enabled: %w", domain.ErrInvalidState)
	}
	ok, err := totp.Validate(code, u.TOTPSecret, time.Now(), s.totpParams)
	if err != nil {
		return fmt.Errorf("stored secret unusable: %w", domain.ErrInvalidState)
	}
	if !ok {
		return fmt.Errorf("invalid code: %w", domain.ErrInvalidCredential)
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{
		fieldTOTPSecret:        "",
		fieldTOTPPendingSecret: "",
		fieldTOTPEnabled:       false,
	}); err != nil {
		return err
	}
	s.notify(u.Email, "Two-factor authentication disabled",
		"Two-factor authentication was just disabled on your account. If this wasn't you, contact support.")
	return nil
}

// notify sends a security email best-effort; delivery failure never fails
// the operation that triggered it.
func (s *service) notify(to, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendEmail(to, subject, body); err != nil {
		slog.Warn("failed to send security notification", "to", to, "err", err)
	}
}
