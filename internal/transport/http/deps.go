package http

import (
	"github.com/apula/responder-api/internal/infrastructure/dynamo"
	"github.com/apula/responder-api/internal/infrastructure/fcm"
	"github.com/apula/responder-api/internal/infrastructure/smtp"
	"github.com/apula/responder-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	TokenRepo        *dynamo.TokenRepo
	DispatchRepo     *dynamo.DispatchRepo
	NotificationRepo *dynamo.NotificationRepo
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	PushSender       fcm.PushSender
}
