package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-totp/internal/application/twofactor"
	"github.com/go-auth-totp/internal/pkg/validate"
	"github.com/go-auth-totp/internal/transport/http/middleware"
)

// TwoFactorHandler handles TOTP enrollment lifecycle endpoints.
type TwoFactorHandler struct {
	svc twofactor.Service
}

func NewTwoFactorHandler(svc twofactor.Service) *TwoFactorHandler {
	return &TwoFactorHandler{svc: svc}
}

type totpCodeRequest struct {
	Code string `json:"code" validate:"required,otpcode"`
}

func (h *TwoFactorHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.svc.Begin(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TwoFactorHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := decodeCodeRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.Confirm(r.Context(), claims.Subject, req.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "two-factor authentication enabled"})
}

func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := decodeCodeRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.Disable(r.Context(), claims.Subject, req.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "two-factor authentication disabled"})
}

func decodeCodeRequest(w http.ResponseWriter, r *http.Request) (totpCodeRequest, bool) {
	var req totpCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}
