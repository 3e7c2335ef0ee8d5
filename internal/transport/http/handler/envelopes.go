package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-account-api/internal/domain"
)

// Statuses reported in the response envelope. PENDING means the request
// succeeded but completion awaits an emailed-link redemption.
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Envelope is the generic response wrapper.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SafeAccount is the account projection returned on login. It carries no
// password hash.
type SafeAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func toSafeAccount(a *domain.Account) *SafeAccount {
	return &SafeAccount{
		ID:       a.AccountID,
		Name:     a.Name,
		Email:    a.Email,
		Verified: a.Verified,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure maps a service error to an HTTP status code via the domain
// sentinels and emits a FAILED envelope carrying the error's message.
func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, failureCode(err), Envelope{Status: StatusFailed, Message: err.Error()})
}

func failureCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrDispatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
