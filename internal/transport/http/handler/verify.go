package handler

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-account-api/internal/application/credential"
	"github.com/go-chi/chi/v5"
)

//go:embed pages/verified.html
var pagesFS embed.FS

var verifiedTmpl = template.Must(template.ParseFS(pagesFS, "pages/verified.html"))

// VerifyHandler handles the emailed verification link and the landing page
// it redirects to.
type VerifyHandler struct {
	svc credential.Service
}

func NewVerifyHandler(svc credential.Service) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

// Verify redeems the token embedded in the emailed link. Browsers follow
// this endpoint directly, so the outcome is reported by redirecting to the
// landing page rather than with a JSON envelope.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "userID")
	token := chi.URLParam(r, "uniqueString")

	if err := h.svc.RedeemVerification(r.Context(), accountID, token); err != nil {
		q := url.Values{}
		q.Set("error", "true")
		q.Set("message", err.Error())
		http.Redirect(w, r, "/api/verified?"+q.Encode(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/api/verified", http.StatusSeeOther)
}

// VerifiedPage renders the static landing page, showing the error message
// from the query string when redemption failed.
func (h *VerifyHandler) VerifiedPage(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Error   bool
		Message string
	}{
		Error:   r.URL.Query().Get("error") == "true",
		Message: r.URL.Query().Get("message"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = verifiedTmpl.Execute(w, data)
}
