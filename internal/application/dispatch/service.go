package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apula/responder-api/internal/domain"
	"github.com/apula/responder-api/internal/infrastructure/fcm"
	"github.com/apula/responder-api/internal/pkg/id"
)

const fallbackLocation = "Unknown location"

type Service interface {
	Create(ctx context.Context, req domain.CreateDispatchRequest) (*domain.DispatchEvent, error)
	Get(ctx context.Context, dispatchID string) (*domain.DispatchEvent, error)
	// FanOut resolves the event's responders to device tokens and sends one
	// multicast alert. Best-effort, single attempt, at most once per event.
	FanOut(ctx context.Context, ev *domain.DispatchEvent) error
}

type dispatchStore interface {
	Put(ctx context.Context, ev *domain.DispatchEvent) error
	Get(ctx context.Context, dispatchID string) (*domain.DispatchEvent, error)
}

type tokenStore interface {
	ListByEmails(ctx context.Context, emails []string) ([]domain.DeviceToken, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type service struct {
	dispatchRepo     dispatchStore
	tokenRepo        tokenStore
	notificationRepo notificationStore
	push             fcm.PushSender
}

type ServiceDeps struct {
	DispatchRepo     dispatchStore
	TokenRepo        tokenStore
	NotificationRepo notificationStore
	Push             fcm.PushSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		dispatchRepo:     deps.DispatchRepo,
		tokenRepo:        deps.TokenRepo,
		notificationRepo: deps.NotificationRepo,
		push:             deps.Push,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateDispatchRequest) (*domain.DispatchEvent, error) {
	ev := &domain.DispatchEvent{
		DispatchID:      id.New(),
		UserAddress:     req.UserAddress,
		ResponderEmails: req.ResponderEmails,
		CreatedByUserID: req.CreatedByUserID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.dispatchRepo.Put(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *service) Get(ctx context.Context, dispatchID string) (*domain.DispatchEvent, error) {
	return s.dispatchRepo.Get(ctx, dispatchID)
}

func (s *service) FanOut(ctx context.Context, ev *domain.DispatchEvent) error {
	if len(ev.ResponderEmails) == 0 {
		slog.Info("dispatch has no responders, skipping fan-out", "dispatch_id", ev.DispatchID)
		return nil
	}

	tokens, err := s.tokenRepo.ListByEmails(ctx, ev.ResponderEmails)
	if err != nil {
		return fmt.Errorf("resolve responder tokens: %w", err)
	}
	targets := dedupeTokens(tokens)
	if len(targets) == 0 {
		slog.Info("no registered device tokens for dispatch, skipping fan-out", "dispatch_id", ev.DispatchID)
		return nil
	}

	location := ev.UserAddress
	if location == "" {
		location = fallbackLocation
	}
	payload := domain.PushPayload{
		Title: "🚨 Dispatch Alert!",
		Body:  fmt.Sprintf("You have been dispatched to: %s", location),
		Data: map[string]string{
			"type":     "dispatch",
			"location": location,
		},
	}

	result, err := s.push.SendMulticast(ctx, targets, payload)
	if err != nil {
		return fmt.Errorf("send dispatch multicast: %w", err)
	}
	slog.Info("dispatch notification sent",
		"dispatch_id", ev.DispatchID,
		"responders", ev.ResponderEmails,
		"delivered", result.SuccessCount,
		"failed", result.FailureCount,
	)

	// In-app records are best-effort: a store hiccup here must not fail a
	// fan-out whose push already went out.
	now := time.Now().UTC()
	for _, email := range ev.ResponderEmails {
		n := &domain.Notification{
			NotificationID: id.New(),
			Email:          email,
			DispatchID:     ev.DispatchID,
			Message:        payload.Body,
			CreatedAt:      now,
		}
		if err := s.notificationRepo.Put(ctx, n); err != nil {
			slog.Warn("failed to record dispatch notification", "dispatch_id", ev.DispatchID, "email", email, "err", err)
		}
	}
	return nil
}

// dedupeTokens flattens device records to unique token strings, preserving
// first-seen order.
func dedupeTokens(tokens []domain.DeviceToken) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Token == "" || seen[t.Token] {
			continue
		}
		seen[t.Token] = true
		out = append(out, t.Token)
	}
	return out
}
