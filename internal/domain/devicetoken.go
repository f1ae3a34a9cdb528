package domain

import "time"

// DeviceToken maps a responder email to one push-routing token. An email may
// own several tokens (one per installed device); lookups must tolerate zero.
type DeviceToken struct {
	TokenID   string    `json:"id" dynamodbav:"token_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Token     string    `json:"token" dynamodbav:"token"`
	Platform  string    `json:"platform,omitempty" dynamodbav:"platform"` // "android" | "ios" | "web"
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterDeviceTokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios web"`
}
