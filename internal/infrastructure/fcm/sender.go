package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/apula/responder-api/internal/domain"
	"google.golang.org/api/option"
)

// maxTokensPerMulticast is the FCM cap on tokens in one multicast message.
const maxTokensPerMulticast = 500

// BatchResult summarises one multicast attempt. Per-token failures are not
// broken out — callers only see the aggregate counts.
type BatchResult struct {
	SuccessCount int
	FailureCount int
}

// PushSender sends one payload to a set of device tokens in a single
// best-effort attempt.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, payload domain.PushPayload) (BatchResult, error)
}

type sender struct {
	client *messaging.Client
}

// NewSender initialises the Firebase app from the given service-account
// credentials file and returns a PushSender backed by FCM.
func NewSender(ctx context.Context, credentialsFile string) (PushSender, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("FCM credentials file not configured")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &sender{client: client}, nil
}

func (s *sender) SendMulticast(ctx context.Context, tokens []string, payload domain.PushPayload) (BatchResult, error) {
	var result BatchResult
	for len(tokens) > 0 {
		batch := tokens
		if len(batch) > maxTokensPerMulticast {
			batch = tokens[:maxTokensPerMulticast]
		}
		tokens = tokens[len(batch):]

		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: payload.Title,
				Body:  payload.Body,
			},
			Data: payload.Data,
		})
		if err != nil {
			return result, fmt.Errorf("send multicast: %w", err)
		}
		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
	}
	return result, nil
}
