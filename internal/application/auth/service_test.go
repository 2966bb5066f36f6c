package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-auth-totp/internal/config"
	"github.com/go-auth-totp/internal/domain"
	jwtinfra "github.com/go-auth-totp/internal/infrastructure/jwt"
	"github.com/go-auth-totp/internal/pkg/password"
	"github.com/go-auth-totp/internal/pkg/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func testTokens(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider(&config.Config{
		JWTSigningKey:   "unit-test-signing-key",
		AccessTokenTTL:  15,
		RefreshTokenTTL: 7 * 24,
		SessionTokenTTL: 24,
	})
	require.NoError(t, err)
	return p
}

func newTestService(t *testing.T, us *mockUserStore) Service {
	t.Helper()
	return NewService(ServiceDeps{
		UserRepo:   us,
		Hasher:     password.NewHasher(4),
		Tokens:     testTokens(t),
		TOTPParams: totp.Params{Window: 1},
	})
}

func userWithPassword(t *testing.T, plaintext string) *domain.User {
	t.Helper()
	hash, err := password.NewHasher(4).Hash(plaintext)
	require.NoError(t, err)
	return &domain.User{UserID: "u1", Email: "user@example.com", PasswordHash: hash}
}

// --- Login ---

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(t, us)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(userWithPassword(t, "Secret123!"), nil)

	svc := newTestService(t, us)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestLogin_RepoUnavailable_NotCredentialError(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(nil, domain.ErrUnavailable)

	svc := newTestService(t, us)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.False(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestLogin_IssuesSessionToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(userWithPassword(t, "Secret123!"), nil)

	svc := newTestService(t, us)
	res, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "Secret123!"})

	require.NoError(t, err)
	assert.False(t, res.TwoFactorRequired)
	require.NotEmpty(t, res.SessionToken)

	claims, err := testTokens(t).Verify(res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, jwtinfra.UseSession, claims.TokenUse)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestLogin_TOTPEnabled_RequiresSecondFactor(t *testing.T) {
	u := userWithPassword(t, "Secret123!")
	u.TOTPEnabled = true
	u.TOTPSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

	svc := newTestService(t, us)
	res, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "Secret123!"})

	require.NoError(t, err)
	assert.True(t, res.TwoFactorRequired)
	assert.Empty(t, res.SessionToken)
}

// --- LoginTwoFactor ---

func TestLoginTwoFactor_Success(t *testing.T) {
	secret, err := totp.NewSecret()
	require.NoError(t, err)
	u := userWithPassword(t, "Secret123!")
	u.TOTPEnabled = true
	u.TOTPSecret = secret
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

	code, err := totp.CodeAt(secret, time.Now(), totp.Params{})
	require.NoError(t, err)

	svc := newTestService(t, us)
	pair, got, err := svc.LoginTwoFactor(context.Background(), TOTPLoginRequest{
		Email: "user@example.com", Password: "Secret123!", Code: code,
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	tokens := testTokens(t)
	access, err := tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, jwtinfra.UseAccess, access.TokenUse)
	refresh, err := tokens.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, jwtinfra.UseRefresh, refresh.TokenUse)
}

func TestLoginTwoFactor_WrongCode(t *testing.T) {
	secret, err := totp.NewSecret()
	require.NoError(t, err)
	u := userWithPassword(t, "Secret123!")
	u.TOTPEnabled = true
	u.TOTPSecret = secret
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

	svc := newTestService(t, us)
	_, _, err = svc.LoginTwoFactor(context.Background(), TOTPLoginRequest{
		Email: "user@example.com", Password: "Secret123!", Code: "000000",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestLoginTwoFactor_NotEnabled(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(userWithPassword(t, "Secret123!"), nil)

	svc := newTestService(t, us)
	_, _, err := svc.LoginTwoFactor(context.Background(), TOTPLoginRequest{
		Email: "user@example.com", Password: "Secret123!", Code: "123456",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestLoginTwoFactor_WrongPasswordCheckedBeforeCode(t *testing.T) {
	secret, err := totp.NewSecret()
	require.NoError(t, err)
	u := userWithPassword(t, "Secret123!")
	u.TOTPEnabled = true
	u.TOTPSecret = secret
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

	code, err := totp.CodeAt(secret, time.Now(), totp.Params{})
	require.NoError(t, err)

	svc := newTestService(t, us)
	_, _, err = svc.LoginTwoFactor(context.Background(), TOTPLoginRequest{
		Email: "user@example.com", Password: "wrong", Code: code,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	tokens := testTokens(t)
	refresh, err := tokens.IssueRefreshToken("u1")
	require.NoError(t, err)

	svc := newTestService(t, &mockUserStore{})
	access, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := tokens.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, jwtinfra.UseAccess, claims.TokenUse)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	tokens := testTokens(t)
	access, err := tokens.IssueAccessToken("u1")
	require.NoError(t, err)

	svc := newTestService(t, &mockUserStore{})
	_, err = svc.Refresh(context.Background(), access)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	svc := newTestService(t, &mockUserStore{})
	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}
