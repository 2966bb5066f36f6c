package http

import (
	"net/http"

	"github.com/go-auth-totp/internal/application/auth"
	"github.com/go-auth-totp/internal/application/twofactor"
	"github.com/go-auth-totp/internal/application/user"
	"github.com/go-auth-totp/internal/config"
	jwtinfra "github.com/go-auth-totp/internal/infrastructure/jwt"
	"github.com/go-auth-totp/internal/pkg/password"
	"github.com/go-auth-totp/internal/pkg/totp"
	"github.com/go-auth-totp/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-totp/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	Mailer      Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	hasher := password.NewHasher(cfg.BcryptCost)
	totpParams := totp.Params{
		Period: cfg.TOTPPeriod,
		Digits: cfg.TOTPDigits,
		Window: cfg.TOTPWindow,
	}

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo: deps.UserRepo,
		Hasher:   hasher,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:   deps.UserRepo,
		Hasher:     hasher,
		Tokens:     deps.JWTProvider,
		TOTPParams: totpParams,
	})
	twofactorSvc := twofactor.NewService(twofactor.ServiceDeps{
		UserRepo:   deps.UserRepo,
		Mailer:     deps.Mailer,
		Issuer:     cfg.TOTPIssuer,
		TOTPParams: totpParams,
	})

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	sessionH := handler.NewSessionHandler(authSvc)
	twofactorH := handler.NewTwoFactorHandler(twofactorSvc)

	authMw := appmiddleware.Auth(deps.JWTProvider)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Post("/users", userH.Register)
		r.Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/login/totp", sessionH.LoginTOTP)
		r.Post("/sessions/refresh", sessionH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Post("/users/me/password", userH.ChangePassword)

			r.Post("/2fa/enroll", twofactorH.Enroll)
			r.Post("/2fa/confirm", twofactorH.Confirm)
			r.Post("/2fa/disable", twofactorH.Disable)
		})
	})

	return r
}
