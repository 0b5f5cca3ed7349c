package handlers

import (
	"log/slog"
	"net/http"

	"github.com/agbank/banking-api/internal/config"
	"github.com/agbank/banking-api/internal/db"
	"github.com/agbank/banking-api/internal/middleware"
	"github.com/agbank/banking-api/internal/repository"
	"github.com/agbank/banking-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	database *db.DB,
	cfg *config.Config,
	logger *slog.Logger,
) http.Handler {
	accountService := service.NewAccountService(database)
	moneyService := service.NewMoneyService(database)
	authService := service.NewAuthService(database, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	handler := NewHandler(accountService, moneyService, authService, database, logger)

	r := chi.NewRouter()
	r.NotFound(handler.NotFound)
	r.Get("/health", handler.Health)

	idempotencyRepo := repository.NewIdempotencyRepository(database)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", handler.CreateAccount)
		r.Post("/login", handler.Login)

		r.Group(func(r chi.Router) {
			// Auth runs before idempotency so a cached response is never
			// replayed to a caller without a valid token.
			r.Use(middleware.RequireAuth(authService, logger))
			r.Use(middleware.Idempotency(idempotencyRepo, logger))

			r.Post("/logout", handler.Logout)

			r.Get("/accounts", handler.ListAccounts)
			r.Get("/accounts/by-number/{accountNumber}", handler.GetAccountByNumber)
			r.Get("/accounts/by-card/{cardNumber}", handler.GetAccountByCard)
			r.Get("/accounts/{accountID}", handler.GetAccount)
			r.Delete("/accounts/{accountID}", handler.DeleteAccount)

			r.Post("/accounts/{accountID}/withdraw", handler.Withdraw)
			r.Post("/accounts/{accountID}/deposit", handler.Deposit)
			r.Post("/accounts/{accountID}/transfer", handler.Transfer)
		})
	})

	return r
}
