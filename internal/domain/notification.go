package domain

import "time"

// Notification is the in-app record of a dispatch alert delivered to one
// responder. Written best-effort during fan-out so the client can list past
// alerts even when the push itself was dropped by the device.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	Email          string    `json:"email" dynamodbav:"email"`
	DispatchID     string    `json:"dispatch_id" dynamodbav:"dispatch_id"`
	Message        string    `json:"message" dynamodbav:"message"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
