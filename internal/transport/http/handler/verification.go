package handler

import (
	"encoding/json"
	"net/http"

	"github.com/apula/responder-api/internal/application/verification"
	"github.com/apula/responder-api/internal/domain"
	"github.com/apula/responder-api/internal/pkg/validate"
)

// VerificationHandler handles verification-code issuance.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// SendCode handles POST /send-verification. The request is rejected before
// any store access when the email is missing or malformed.
func (h *VerificationHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req domain.SendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SendCode(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	// The code itself is never echoed back; it travels only over the
	// delivery channel.
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "verification code sent"})
}
