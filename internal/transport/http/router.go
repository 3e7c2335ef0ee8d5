package http

import (
	"net/http"

	"github.com/go-account-api/internal/application/account"
	"github.com/go-account-api/internal/application/credential"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/transport/http/handler"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	credentialSvc := credential.NewService(credential.ServiceDeps{
		AccountRepo:      deps.AccountRepo,
		VerificationRepo: deps.VerificationRepo,
		ResetRepo:        deps.ResetRepo,
		RedemptionRepo:   deps.RedemptionRepo,
		Mailer:           deps.Mailer,
		VerifyBaseURL:    cfg.AppBaseURL,
	})
	accountSvc := account.NewService(deps.AccountRepo, credentialSvc)

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	verifyH := handler.NewVerifyHandler(credentialSvc)
	resetH := handler.NewPasswordResetHandler(accountSvc, credentialSvc)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Post("/signup", accountH.Signup)
		r.Post("/login", accountH.Login)

		r.Get("/verify/{userID}/{uniqueString}", verifyH.Verify)
		r.Get("/verified", verifyH.VerifiedPage)

		r.Post("/resetPasswordReset", resetH.Request)
		r.Post("/resetPassword", resetH.Reset)
	})

	return r
}
