package domain

import "time"

// DispatchEvent is an incident record that triggers responder fan-out.
// Events are immutable once written; the fan-out pipeline only ever reads
// the creation-time snapshot delivered by the table stream.
type DispatchEvent struct {
	DispatchID      string    `json:"id" dynamodbav:"dispatch_id"`
	UserAddress     string    `json:"user_address" dynamodbav:"user_address"`
	ResponderEmails []string  `json:"responder_emails" dynamodbav:"responder_emails"`
	CreatedByUserID string    `json:"created_by_user_id,omitempty" dynamodbav:"created_by_user_id"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateDispatchRequest struct {
	UserAddress     string   `json:"user_address" validate:"required"`
	ResponderEmails []string `json:"responder_emails" validate:"dive,email"`
	CreatedByUserID string   `json:"created_by_user_id"`
}

// PushPayload is the message sent to every resolved device token.
type PushPayload struct {
	Title string
	Body  string
	Data  map[string]string
}
