package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-account-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	args := m.Called(ctx, email, password)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	return m.Called(ctx, email, redirectURL).Error(0)
}

// --- helpers ---

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

// --- Signup tests ---

func TestSignup_InvalidBody(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	r := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()

	h.Signup(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, StatusFailed, decodeEnvelope(t, rr).Status)
}

func TestSignup_Pending(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Signup", mock.Anything, mock.AnythingOfType("domain.SignupRequest")).
		Return(&domain.Account{AccountID: "a1"}, nil)
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(domain.SignupRequest{
		Name: "Jane Doe", Email: "jane@x.com", Password: "longpassword", DateOfBirth: "1990-01-01",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Signup(rr, r)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, StatusPending, env.Status)
	assert.Contains(t, env.Message, "verification email sent")
}

func TestSignup_ValidationFailure(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("password is too short: %w", domain.ErrBadRequest))
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(domain.SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "short", DateOfBirth: "1990-01-01"})
	r := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Signup(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, StatusFailed, env.Status)
	assert.Contains(t, env.Message, "too short")
}

func TestSignup_Conflict(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("account with the provided email already exists: %w", domain.ErrConflict))
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(domain.SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "longpassword", DateOfBirth: "1990-01-01"})
	r := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Signup(rr, r)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

// --- Login tests ---

func TestLogin_MissingFields(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	body, _ := json.Marshal(domain.LoginRequest{Email: "jane@x.com"})
	r := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Login(rr, r)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestLogin_NotVerified(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, "jane@x.com", "longpassword").
		Return(nil, fmt.Errorf("email not verified yet, check your inbox: %w", domain.ErrBadRequest))
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(domain.LoginRequest{Email: "jane@x.com", Password: "longpassword"})
	r := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Login(rr, r)

	env := decodeEnvelope(t, rr)
	assert.Equal(t, StatusFailed, env.Status)
	assert.Contains(t, env.Message, "not verified")
}

func TestLogin_Success_NoHashInPayload(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, "jane@x.com", "longpassword").
		Return(&domain.Account{
			AccountID:    "a1",
			Name:         "Jane Doe",
			Email:        "jane@x.com",
			PasswordHash: "$2a$10$secretsecretsecret",
			Verified:     true,
		}, nil)
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(domain.LoginRequest{Email: "jane@x.com", Password: "longpassword"})
	r := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Login(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	raw := rr.Body.String()
	assert.NotContains(t, raw, "secretsecret")

	var out struct {
		Status string       `json:"status"`
		Data   *SafeAccount `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, StatusSuccess, out.Status)
	require.NotNil(t, out.Data)
	assert.Equal(t, "a1", out.Data.ID)
	assert.True(t, out.Data.Verified)
}
