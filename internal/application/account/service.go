package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-account-api/internal/application/credential"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/id"
	"github.com/go-account-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

var nameRe = regexp.MustCompile(`^[A-Za-z ]+$`)

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error
}

type accountStore interface {
	PutNew(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type service struct {
	repo        accountStore
	credentials credential.Service
}

func NewService(repo accountStore, credentials credential.Service) Service {
	return &service{repo: repo, credentials: credentials}
}

// Signup validates the request field by field, inserts the account with
// verified=false and hands off to verification-token issuance. The result
// reported to the caller is whatever issuance reports: a successful signup
// is PENDING until the emailed link is redeemed.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	dob := strings.TrimSpace(req.DateOfBirth)

	if name == "" || email == "" || password == "" || dob == "" {
		return nil, fmt.Errorf("empty input fields: %w", domain.ErrBadRequest)
	}
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid name entered: %w", domain.ErrBadRequest)
	}
	if !validate.Email(email) {
		return nil, fmt.Errorf("invalid email entered: %w", domain.ErrBadRequest)
	}
	birthday, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return nil, fmt.Errorf("invalid date of birth entered: %w", domain.ErrBadRequest)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password is too short: %w", domain.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}
	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		DateOfBirth:  birthday,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.PutNew(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("account with the provided email already exists: %w", domain.ErrConflict)
		}
		return nil, err
	}
	if err := s.credentials.IssueVerification(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login authenticates against the stored bcrypt hash, gated on the verified
// flag. Missing account and wrong password both surface as credential
// failures; only the unverified case is called out, since signup already
// reveals address existence anyway.
func (s *service) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, fmt.Errorf("empty credentials supplied: %w", domain.ErrBadRequest)
	}
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials entered: %w", domain.ErrNotFound)
	}
	if !a.Verified {
		return nil, fmt.Errorf("email not verified yet, check your inbox: %w", domain.ErrBadRequest)
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid password entered: %w", domain.ErrMismatch)
	}
	return a, nil
}

// RequestPasswordReset looks the account up by email and triggers
// reset-token issuance. Refused for unverified accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	a, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("no account with the entered email exists: %w", domain.ErrNotFound)
	}
	if !a.Verified {
		return fmt.Errorf("email hasn't been verified yet, check your inbox: %w", domain.ErrBadRequest)
	}
	return s.credentials.IssueReset(ctx, a, redirectURL)
}
