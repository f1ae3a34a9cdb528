package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldVerificationCode      = "verification_code"
	fieldVerificationExpiresAt = "verification_expires_at"
	fieldPlatform              = "platform"
	fieldUpdatedAt             = "updated_at"
)
