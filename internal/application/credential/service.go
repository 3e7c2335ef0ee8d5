package credential

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/id"
	pkgtoken "github.com/go-account-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Service implements the single-use email-token workflow: issuance hashes a
// fresh random token, persists it with an expiry and emails the plaintext;
// redemption validates a presented plaintext against the stored hash and
// applies the kind-specific account mutation.
type Service interface {
	IssueVerification(ctx context.Context, acct *domain.Account) error
	IssueReset(ctx context.Context, acct *domain.Account, redirectURL string) error
	RedeemVerification(ctx context.Context, accountID, token string) error
	RedeemReset(ctx context.Context, accountID, token, newPassword string) error
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.VerificationToken) error
	GetOldest(ctx context.Context, accountID string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, accountID, tokenID string) error
}

type resetStore interface {
	Put(ctx context.Context, t *domain.PasswordResetToken) error
	Get(ctx context.Context, accountID string) (*domain.PasswordResetToken, error)
	Delete(ctx context.Context, accountID string) error
}

type redemptionStore interface {
	ConfirmAccount(ctx context.Context, accountID, tokenID string) error
	ChangePassword(ctx context.Context, accountID, newHash string) error
	PurgeExpiredSignup(ctx context.Context, accountID, tokenID, email string) error
}

type mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type service struct {
	accounts      accountStore
	verifications verificationStore
	resets        resetStore
	redemptions   redemptionStore
	mailer        mailer

	// verifyBaseURL is the service's own base URL; verification links point
	// back at /api/verify. Reset links point at the caller-supplied redirect.
	verifyBaseURL string
}

type ServiceDeps struct {
	AccountRepo      accountStore
	VerificationRepo verificationStore
	ResetRepo        resetStore
	RedemptionRepo   redemptionStore
	Mailer           mailer
	VerifyBaseURL    string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:      deps.AccountRepo,
		verifications: deps.VerificationRepo,
		resets:        deps.ResetRepo,
		redemptions:   deps.RedemptionRepo,
		mailer:        deps.Mailer,
		verifyBaseURL: deps.VerifyBaseURL,
	}
}

// IssueVerification creates a pending verification token for a freshly
// signed-up account and emails the link. The record is persisted before the
// email goes out; if dispatch then fails the record stays behind until its
// TTL reaps it.
func (s *service) IssueVerification(ctx context.Context, acct *domain.Account) error {
	plaintext := pkgtoken.New(acct.AccountID)
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash verification data: %w", err)
	}
	now := time.Now().Unix()
	v := &domain.VerificationToken{
		AccountID: acct.AccountID,
		TokenID:   id.New(),
		TokenHash: string(hash),
		CreatedAt: now,
		ExpiresAt: now + domain.KindVerification.Window(),
	}
	if err := s.verifications.Put(ctx, v); err != nil {
		return fmt.Errorf("could not save verification data: %w", err)
	}

	link := fmt.Sprintf("%s/api/verify/%s/%s", s.verifyBaseURL, acct.AccountID, plaintext)
	body := fmt.Sprintf(
		`<p>Verify your email address to complete the signup and login into your account.</p><p>This link <b>expires in 6 hours</b>.</p><p>Press <a href=%q>here</a> to proceed.</p>`,
		link,
	)
	if err := s.mailer.SendEmail(acct.Email, "Verify your email", body); err != nil {
		slog.Error("verification email dispatch failed", "account_id", acct.AccountID, "err", err)
		return fmt.Errorf("verification email failed: %w", domain.ErrDispatch)
	}
	return nil
}

// IssueReset creates the single live password-reset token for the account
// and emails the link. The reset-token table is keyed by account id alone,
// so this put atomically invalidates any earlier token.
func (s *service) IssueReset(ctx context.Context, acct *domain.Account, redirectURL string) error {
	plaintext := pkgtoken.New(acct.AccountID)
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash password reset data: %w", err)
	}
	now := time.Now().Unix()
	t := &domain.PasswordResetToken{
		AccountID: acct.AccountID,
		TokenHash: string(hash),
		CreatedAt: now,
		ExpiresAt: now + domain.KindReset.Window(),
	}
	if err := s.resets.Put(ctx, t); err != nil {
		return fmt.Errorf("could not save password reset data: %w", err)
	}

	link := fmt.Sprintf("%s/%s/%s", redirectURL, acct.AccountID, plaintext)
	body := fmt.Sprintf(
		`<p>We heard that you lost the password.</p><p>Don't worry, use the link below to reset your password.</p><p>This link <b>expires in 60 minutes</b>.</p><p>Press <a href=%q>here</a> to proceed.</p>`,
		link,
	)
	if err := s.mailer.SendEmail(acct.Email, "Password Reset", body); err != nil {
		slog.Error("password reset email dispatch failed", "account_id", acct.AccountID, "err", err)
		return fmt.Errorf("password reset email failed: %w", domain.ErrDispatch)
	}
	return nil
}

// RedeemVerification validates a presented verification token. A valid
// match flips the account's verified flag and consumes the record in one
// store transaction. An expired record means the signup was abandoned, so
// both the record and the unverified account are removed.
func (s *service) RedeemVerification(ctx context.Context, accountID, token string) error {
	v, err := s.verifications.GetOldest(ctx, accountID)
	if err != nil {
		return fmt.Errorf("account record doesn't exist or has been verified already, please sign up or log in: %w", domain.ErrNotFound)
	}
	if v.ExpiresAt < time.Now().Unix() {
		if acct, aerr := s.accounts.Get(ctx, accountID); aerr == nil {
			if perr := s.redemptions.PurgeExpiredSignup(ctx, accountID, v.TokenID, acct.Email); perr != nil {
				return fmt.Errorf("could not clear expired verification record: %w", perr)
			}
		} else if derr := s.verifications.Delete(ctx, accountID, v.TokenID); derr != nil {
			return fmt.Errorf("could not clear expired verification record: %w", derr)
		}
		return fmt.Errorf("link has expired, please sign up again: %w", domain.ErrExpired)
	}
	if bcrypt.CompareHashAndPassword([]byte(v.TokenHash), []byte(token)) != nil {
		return fmt.Errorf("invalid verification details passed, check your inbox: %w", domain.ErrMismatch)
	}
	if err := s.redemptions.ConfirmAccount(ctx, accountID, v.TokenID); err != nil {
		return fmt.Errorf("could not finalize verification: %w", err)
	}
	return nil
}

// RedeemReset validates a presented reset token and, on a match, stores the
// bcrypt hash of newPassword while consuming the record.
func (s *service) RedeemReset(ctx context.Context, accountID, token, newPassword string) error {
	t, err := s.resets.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("password reset request not found: %w", domain.ErrNotFound)
	}
	if t.ExpiresAt < time.Now().Unix() {
		if derr := s.resets.Delete(ctx, accountID); derr != nil {
			return fmt.Errorf("could not clear expired password reset record: %w", derr)
		}
		return fmt.Errorf("password reset link has expired: %w", domain.ErrExpired)
	}
	if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token)) != nil {
		return fmt.Errorf("invalid password reset details passed: %w", domain.ErrMismatch)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash new password: %w", err)
	}
	if err := s.redemptions.ChangePassword(ctx, accountID, string(hash)); err != nil {
		return fmt.Errorf("could not finalize password reset: %w", err)
	}
	return nil
}
