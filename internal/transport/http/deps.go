package http

import (
	"github.com/go-account-api/internal/infrastructure/dynamo"
	"github.com/go-account-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router. Everything is
// constructed once at process start and injected; nothing reaches for
// process-global state.
type Deps struct {
	AccountRepo      *dynamo.AccountRepo
	VerificationRepo *dynamo.VerificationRepo
	ResetRepo        *dynamo.ResetRepo
	RedemptionRepo   *dynamo.RedemptionRepo
	Mailer           smtp.Mailer
}
