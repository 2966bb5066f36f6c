package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-auth-totp/internal/application/auth"
	"github.com/go-auth-totp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) LoginTwoFactor(ctx context.Context, req auth.TOTPLoginRequest) (*auth.TokenPair, *domain.User, error) {
	args := m.Called(ctx, req)
	pair, _ := args.Get(0).(*auth.TokenPair)
	u, _ := args.Get(1).(*domain.User)
	return pair, u, args.Error(2)
}

func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

// --- Login ---

func TestLogin_SessionToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, auth.LoginRequest{Email: "user@example.com", Password: "Secret123!"}).
		Return(&auth.LoginResult{
			SessionToken: "signed.session.token",
			User:         &domain.User{UserID: "u1", Email: "user@example.com"},
		}, nil)

	h := NewSessionHandler(svc)
	body := []byte(`{"email":"user@example.com","password":"Secret123!"}`)
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "signed.session.token", resp.SessionToken)
	assert.False(t, resp.TwoFactorRequired)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestLogin_TwoFactorRequired(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).
		Return(&auth.LoginResult{TwoFactorRequired: true, User: &domain.User{UserID: "u1"}}, nil)

	h := NewSessionHandler(svc)
	body := []byte(`{"email":"user@example.com","password":"Secret123!"}`)
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.TwoFactorRequired)
	assert.Empty(t, resp.SessionToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredential)

	h := NewSessionHandler(svc)
	body := []byte(`{"email":"user@example.com","password":"wrong-pass"}`)
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	// Same generic message regardless of whether the email exists.
	assert.Contains(t, rr.Body.String(), "invalid credentials")
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{})
	body := []byte(`{"email":"user@example.com"}`)
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- LoginTOTP ---

func TestLoginTOTP_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginTwoFactor", mock.Anything, auth.TOTPLoginRequest{
		Email: "user@example.com", Password: "Secret123!", Code: "123456",
	}).Return(
		&auth.TokenPair{AccessToken: "access.tok", RefreshToken: "refresh.tok"},
		&domain.User{UserID: "u1", Email: "user@example.com", TOTPEnabled: true},
		nil,
	)

	h := NewSessionHandler(svc)
	body := []byte(`{"email":"user@example.com","password":"Secret123!","code":"123456"}`)
	rr := httptest.NewRecorder()
	h.LoginTOTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login/totp", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "access.tok", resp.AccessToken)
	assert.Equal(t, "refresh.tok", resp.RefreshToken)
}

func TestLoginTOTP_MalformedCodeRejectedAtBoundary(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{})
	body := []byte(`{"email":"user@example.com","password":"Secret123!","code":"12ab56"}`)
	rr := httptest.NewRecorder()
	h.LoginTOTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login/totp", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginTOTP_WrongCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginTwoFactor", mock.Anything, mock.Anything).Return(nil, nil, domain.ErrInvalidCredential)

	h := NewSessionHandler(svc)
	body := []byte(`{"email":"user@example.com","password":"Secret123!","code":"000000"}`)
	rr := httptest.NewRecorder()
	h.LoginTOTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login/totp", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "refresh.tok").Return("new.access.tok", nil)

	h := NewSessionHandler(svc)
	body := []byte(`{"refresh_token":"refresh.tok"}`)
	rr := httptest.NewRecorder()
	h.Refresh(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "new.access.tok", resp.AccessToken)
}

func TestRefresh_MissingToken(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{})
	rr := httptest.NewRecorder()
	h.Refresh(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "stale.tok").Return("", domain.ErrInvalidToken)

	h := NewSessionHandler(svc)
	body := []byte(`{"refresh_token":"stale.tok"}`)
	rr := httptest.NewRecorder()
	h.Refresh(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
