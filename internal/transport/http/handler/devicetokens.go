package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/apula/responder-api/internal/domain"
	"github.com/apula/responder-api/internal/pkg/validate"
)

// TokenRegistry is the store surface needed for device-token registration.
type TokenRegistry interface {
	Upsert(ctx context.Context, email, token, platform string) (*domain.DeviceToken, error)
}

// DeviceTokenHandler handles push-token registration for responder devices.
type DeviceTokenHandler struct {
	tokens TokenRegistry
}

func NewDeviceTokenHandler(tokens TokenRegistry) *DeviceTokenHandler {
	return &DeviceTokenHandler{tokens: tokens}
}

// Register handles PUT /device-tokens. Re-registering an existing
// (email, token) pair refreshes the record instead of duplicating it.
func (h *DeviceTokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterDeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.tokens.Upsert(r.Context(), req.Email, req.Token, req.Platform)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
