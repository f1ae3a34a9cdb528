package domain

import "time"

type User struct {
	UserID                string     `json:"id" dynamodbav:"user_id"`
	Email                 string     `json:"email" dynamodbav:"email"`
	Phone                 *string    `json:"phone,omitempty" dynamodbav:"phone"`
	FirstName             string     `json:"first_name" dynamodbav:"first_name"`
	LastName              string     `json:"last_name" dynamodbav:"last_name"`
	VerificationCode      string     `json:"-" dynamodbav:"verification_code"`
	VerificationExpiresAt int64      `json:"-" dynamodbav:"verification_expires_at"` // Unix seconds, DynamoDB-readable
	DeletedAt             *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt             time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// SendVerificationRequest asks for a fresh code to be issued to the user
// owning the given email. Channel defaults to "email".
type SendVerificationRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Channel string `json:"channel" validate:"omitempty,oneof=email sms"`
}
