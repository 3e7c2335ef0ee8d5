package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-account-api/internal/application/account"
	"github.com/go-account-api/internal/application/credential"
	"github.com/go-account-api/internal/pkg/validate"
)

// PasswordResetHandler handles the reset-request and reset-redemption
// endpoints.
type PasswordResetHandler struct {
	accounts    account.Service
	credentials credential.Service
}

func NewPasswordResetHandler(accounts account.Service, credentials credential.Service) *PasswordResetHandler {
	return &PasswordResetHandler{accounts: accounts, credentials: credentials}
}

type resetRequestBody struct {
	Email       string `json:"email" validate:"required,email"`
	RedirectURL string `json:"redirectURL" validate:"required,url"`
}

type resetBody struct {
	UserID      string `json:"userID" validate:"required"`
	ResetString string `json:"resetString" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Request triggers reset-token issuance for the account behind the email.
func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req resetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Status: StatusFailed, Message: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Envelope{Status: StatusFailed, Message: err.Error()})
		return
	}
	if err := h.accounts.RequestPasswordReset(r.Context(), req.Email, req.RedirectURL); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, Envelope{Status: StatusPending, Message: "password reset email sent"})
}

// Reset redeems a reset token and installs the new password.
func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Status: StatusFailed, Message: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Envelope{Status: StatusFailed, Message: err.Error()})
		return
	}
	if err := h.credentials.RedeemReset(r.Context(), req.UserID, req.ResetString, req.NewPassword); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: "password has been reset"})
}
