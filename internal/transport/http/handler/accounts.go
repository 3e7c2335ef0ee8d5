package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-account-api/internal/application/account"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/validate"
)

// AccountHandler handles signup and login.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Status: StatusFailed, Message: "invalid request body"})
		return
	}
	if _, err := h.svc.Signup(r.Context(), req); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, Envelope{Status: StatusPending, Message: "verification email sent"})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Status: StatusFailed, Message: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Envelope{Status: StatusFailed, Message: err.Error()})
		return
	}
	a, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: "login successful", Data: toSafeAccount(a)})
}
