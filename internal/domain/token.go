package domain

// TokenKind selects which credential-token workflow a record belongs to.
type TokenKind string

const (
	KindVerification TokenKind = "verification"
	KindReset        TokenKind = "reset"
)

// Window returns the validity window for the kind: 6 hours for email
// verification, 60 minutes for password reset.
func (k TokenKind) Window() int64 {
	if k == KindReset {
		return 60 * 60
	}
	return 6 * 60 * 60
}

// VerificationToken is a pending email-verification record. Several may
// accumulate for the same account; redemption only ever consults the oldest.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type VerificationToken struct {
	AccountID string `json:"account_id" dynamodbav:"account_id"`
	TokenID   string `json:"token_id" dynamodbav:"token_id"`
	TokenHash string `json:"-" dynamodbav:"token_hash"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// PasswordResetToken is a pending reset record. The table is keyed by
// account_id alone, so a put replaces any previous record: at most one live
// reset token per account, enforced by the store schema.
type PasswordResetToken struct {
	AccountID string `json:"account_id" dynamodbav:"account_id"`
	TokenHash string `json:"-" dynamodbav:"token_hash"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
