package handler

import (
	"context"
	"net/http"

	"github.com/apula/responder-api/internal/domain"
)

const defaultNotificationLimit = 50

// NotificationLister is the store surface needed for notification listing.
type NotificationLister interface {
	ListByEmail(ctx context.Context, email string, limit int32) ([]domain.Notification, error)
}

// NotificationHandler lists the in-app dispatch alerts of one responder.
type NotificationHandler struct {
	notifications NotificationLister
}

func NewNotificationHandler(notifications NotificationLister) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	items, err := h.notifications.ListByEmail(r.Context(), email, defaultNotificationLimit)
	if err != nil {
		httpError(w, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}
