package domain

import "time"

type User struct {
	UserID       string `json:"id" dynamodbav:"user_id"`
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	// TOTPSecret is the confirmed shared secret (base32, no padding).
	// Present only after enrollment has been confirmed with a valid code.
	TOTPSecret string `json:"-" dynamodbav:"totp_secret"`
	// TOTPPendingSecret holds a generated but not yet confirmed secret.
	// Overwritten by repeated enrollment attempts, cleared on confirmation.
	TOTPPendingSecret string    `json:"-" dynamodbav:"totp_pending_secret"`
	TOTPEnabled       bool      `json:"totp_enabled" dynamodbav:"totp_enabled"`
	CreatedAt         time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}
