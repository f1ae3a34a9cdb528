package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/apula/responder-api/internal/domain"
	"github.com/apula/responder-api/internal/pkg/code"
)

// codeTTL is how long an issued code stays valid. The record only carries the
// expiry; enforcement belongs to the (out-of-scope) validation flow.
const codeTTL = 15 * time.Minute

type Service interface {
	// SendCode issues a fresh 6-digit code to the user owning req.Email.
	// The code is persisted before any delivery attempt so a delivered code
	// is always the one on record.
	SendCode(ctx context.Context, req domain.SendVerificationRequest) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetVerificationCode(ctx context.Context, userID, code string, expiresAt int64) error
}

type mailSender interface {
	SendEmail(to, subject, htmlBody string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	userRepo userStore
	mailer   mailSender
	sms      smsSender
}

type ServiceDeps struct {
	UserRepo userStore
	Mailer   mailSender
	SMS      smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo: deps.UserRepo,
		mailer:   deps.Mailer,
		sms:      deps.SMS,
	}
}

func (s *service) SendCode(ctx context.Context, req domain.SendVerificationRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	// Channel preconditions are checked before the code is generated so a
	// doomed request leaves no half-written state behind.
	if req.Channel == "sms" {
		if s.sms == nil {
			return fmt.Errorf("sms delivery is not configured")
		}
		if u.Phone == nil || *u.Phone == "" {
			return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
		}
	}

	c, err := code.New()
	if err != nil {
		return err
	}

	// Persist-then-send: the write must land before delivery is attempted.
	// A send failure after this point leaves the code valid on record.
	expiresAt := time.Now().Add(codeTTL).Unix()
	if err := s.userRepo.SetVerificationCode(ctx, u.UserID, c, expiresAt); err != nil {
		return fmt.Errorf("persist verification code: %w", err)
	}

	switch req.Channel {
	case "sms":
		return s.sms.SendSMS(ctx, *u.Phone, "Your verification code: "+c)
	default:
		return s.mailer.SendEmail(u.Email, "Your Verification Code", verificationBody(c))
	}
}

func verificationBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; text-align: center;">
  <h2>Verification Code</h2>
  <p>Your verification code is:</p>
  <h1 style="color: #A30000;">%s</h1>
  <p>Enter this code in the app to verify your account.</p>
</div>`, code)
}
