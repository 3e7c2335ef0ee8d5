package token

import "github.com/google/uuid"

// New generates the plaintext credential token emailed to the account
// holder: a random UUID concatenated with the account id. The UUID carries
// the secrecy; the id suffix makes the value unique per account and
// traceable in support logs without being secret itself.
func New(accountID string) string {
	return uuid.NewString() + accountID
}
