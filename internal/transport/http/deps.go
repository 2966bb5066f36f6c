package http

import (
	"context"

	"github.com/go-auth-totp/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// Mailer is the minimal interface the router requires from an email sender.
type Mailer interface {
	SendEmail(to, subject, body string) error
}
