// Package handlers implements the HTTP layer of the banking API.
package handlers

import (
	"log/slog"

	"github.com/agbank/banking-api/internal/service"
)

// Handler exposes the account and money-movement services over HTTP.
type Handler struct {
	accounts      service.AccountManager
	money         service.MoneyMover
	auth          service.Authenticator
	healthChecker service.HealthChecker
	logger        *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	accounts service.AccountManager,
	money service.MoneyMover,
	auth service.Authenticator,
	healthChecker service.HealthChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts:      accounts,
		money:         money,
		auth:          auth,
		healthChecker: healthChecker,
		logger:        logger,
	}
}
