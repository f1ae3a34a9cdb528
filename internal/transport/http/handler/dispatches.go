package handler

import (
	"encoding/json"
	"net/http"

	"github.com/apula/responder-api/internal/application/dispatch"
	"github.com/apula/responder-api/internal/domain"
	"github.com/apula/responder-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// DispatchHandler handles dispatch-event creation and lookup. Fan-out is not
// triggered here — the table stream consumer owns that, so out-of-band
// writers get identical semantics.
type DispatchHandler struct {
	svc dispatch.Service
}

func NewDispatchHandler(svc dispatch.Service) *DispatchHandler {
	return &DispatchHandler{svc: svc}
}

func (h *DispatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *DispatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
