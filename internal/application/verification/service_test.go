package verification

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/apula/responder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct {
	mock.Mock
	callOrder *[]string
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) SetVerificationCode(ctx context.Context, userID, code string, expiresAt int64) error {
	if m.callOrder != nil {
		*m.callOrder = append(*m.callOrder, "persist")
	}
	return m.Called(ctx, userID, code, expiresAt).Error(0)
}

type mockMailer struct {
	mock.Mock
	callOrder *[]string
}

func (m *mockMailer) SendEmail(to, subject, htmlBody string) error {
	if m.callOrder != nil {
		*m.callOrder = append(*m.callOrder, "send")
	}
	return m.Called(to, subject, htmlBody).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- helpers ---

func newService(us *mockUserStore, ml *mockMailer, sms *mockSMSSender) Service {
	deps := ServiceDeps{UserRepo: us, Mailer: ml}
	// Assign only a non-nil pointer so a nil *mockSMSSender stays a nil
	// interface, matching production wiring when SNS init fails.
	if sms != nil {
		deps.SMS = sms
	}
	return NewService(deps)
}

func emailReq(email string) domain.SendVerificationRequest {
	return domain.SendVerificationRequest{Email: email}
}

// --- SendCode ---

func TestSendCode_UserNotFound_NoWriteNoSend(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, ml, nil)
	err := svc.SendCode(context.Background(), emailReq("nobody@example.com"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	us.AssertNotCalled(t, "SetVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_HappyPath_PersistedCodeMatchesMailedCode(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	user := &domain.User{UserID: "u1", Email: "user@example.com"}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)
	us.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "user@example.com", "Your Verification Code", mock.Anything).Return(nil)

	svc := newService(us, ml, nil)
	err := svc.SendCode(context.Background(), emailReq("user@example.com"))
	require.NoError(t, err)

	persisted := us.Calls[1].Arguments.String(2)
	body := ml.Calls[0].Arguments.String(2)
	assert.Contains(t, body, persisted)

	n, convErr := strconv.Atoi(persisted)
	require.NoError(t, convErr)
	assert.Len(t, persisted, 6)
	assert.GreaterOrEqual(t, n, 100000)
	assert.LessOrEqual(t, n, 999999)
}

func TestSendCode_PersistsBeforeSending(t *testing.T) {
	var order []string
	us := &mockUserStore{callOrder: &order}
	ml := &mockMailer{callOrder: &order}
	user := &domain.User{UserID: "u1", Email: "user@example.com"}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)
	us.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(us, ml, nil)
	require.NoError(t, svc.SendCode(context.Background(), emailReq("user@example.com")))

	require.Equal(t, []string{"persist", "send"}, order)
}

func TestSendCode_PersistFailure_AbortsBeforeSend(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	user := &domain.User{UserID: "u1", Email: "user@example.com"}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)
	us.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := newService(us, ml, nil)
	err := svc.SendCode(context.Background(), emailReq("user@example.com"))

	require.Error(t, err)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_MailFailure_CodeAlreadyPersisted(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	user := &domain.User{UserID: "u1", Email: "user@example.com"}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)
	us.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp rejected"))

	svc := newService(us, ml, nil)
	err := svc.SendCode(context.Background(), emailReq("user@example.com"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrBadRequest)
	// The write happened before the failed send; the code stays on record.
	us.AssertCalled(t, "SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything)
}

func TestSendCode_ExpirySetRoughlyFifteenMinutesOut(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	user := &domain.User{UserID: "u1", Email: "user@example.com"}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)
	us.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	before := time.Now().Add(codeTTL).Unix()
	svc := newService(us, ml, nil)
	require.NoError(t, svc.SendCode(context.Background(), emailReq("user@example.com")))
	after := time.Now().Add(codeTTL).Unix()

	expiresAt := us.Calls[1].Arguments.Get(3).(int64)
	assert.GreaterOrEqual(t, expiresAt, before)
	assert.LessOrEqual(t, expiresAt, after)
}

// --- SMS channel ---

func TestSendCode_SMSChannel_NoPhone_BadRequest(t *testing.T) {
	us := &mockUserStore{}
	sms := &mockSMSSender{}
	user := &domain.User{UserID: "u1", Email: "user@example.com"}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

	svc := newService(us, nil, sms)
	err := svc.SendCode(context.Background(), domain.SendVerificationRequest{
		Email:   "user@example.com",
		Channel: "sms",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "SetVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_SMSChannel_SenderNotConfigured_NoWrite(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	phone := "+15551234567"
	user := &domain.User{UserID: "u1", Email: "user@example.com", Phone: &phone}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

	// No SMS sender wired at all, as happens when SNS init fails at startup.
	svc := newService(us, ml, nil)
	var err error
	require.NotPanics(t, func() {
		err = svc.SendCode(context.Background(), domain.SendVerificationRequest{
			Email:   "user@example.com",
			Channel: "sms",
		})
	})

	require.Error(t, err)
	us.AssertNotCalled(t, "SetVerificationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_SMSChannel_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	sms := &mockSMSSender{}
	phone := "+15551234567"
	user := &domain.User{UserID: "u1", Email: "user@example.com", Phone: &phone}
	us.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)
	us.On("SetVerificationCode", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, phone, mock.Anything).Return(nil)

	svc := newService(us, nil, sms)
	err := svc.SendCode(context.Background(), domain.SendVerificationRequest{
		Email:   "user@example.com",
		Channel: "sms",
	})

	require.NoError(t, err)
	persisted := us.Calls[1].Arguments.String(2)
	msg := sms.Calls[0].Arguments.String(2)
	assert.True(t, strings.HasSuffix(msg, persisted))
}
