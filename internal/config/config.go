package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
// Every component receives the values it needs at construction; nothing reads
// the environment after startup.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// JWTSigningKey is the shared HMAC-SHA256 key for all issued tokens.
	JWTSigningKey   string
	AccessTokenTTL  int // minutes
	RefreshTokenTTL int // hours
	SessionTokenTTL int // hours, password-only login flow

	TOTPIssuer string
	TOTPPeriod int // seconds per time step
	TOTPDigits int
	TOTPWindow int // accepted steps of clock skew in either direction

	BcryptCost int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table names.
type DynamoTables struct {
	Users string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users: getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", ""),
		AccessTokenTTL:  getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15),
		RefreshTokenTTL: getEnvInt("REFRESH_TOKEN_TTL_HOURS", 7*24),
		SessionTokenTTL: getEnvInt("SESSION_TOKEN_TTL_HOURS", 24),

		TOTPIssuer: getEnv("TOTP_ISSUER", "go-auth-totp"),
		TOTPPeriod: getEnvInt("TOTP_PERIOD_SECONDS", 30),
		TOTPDigits: getEnvInt("TOTP_DIGITS", 6),
		TOTPWindow: getEnvInt("TOTP_WINDOW", 1),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
