package service

import (
	"context"

	"github.com/agbank/banking-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// AccountManager handles account onboarding, lookup and removal
type AccountManager interface {
	Create(ctx context.Context, req CreateAccountReq) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	GetByCardNumber(ctx context.Context, cardNumber string) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MoneyMover handles withdraw, deposit and peer transfer operations
type MoneyMover interface {
	Withdraw(ctx context.Context, accountID uuid.UUID, cardNumber string, amount int64) (*models.Account, error)
	Deposit(ctx context.Context, req DepositReq) (*models.Account, error)
	Transfer(ctx context.Context, senderID uuid.UUID, recipientAccountNumber string, amount int64) (*TransferResult, error)
}

// Authenticator handles login and bearer-token verification
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyToken(tokenString string) (*jwt.RegisteredClaims, error)
}

// Ensure concrete types implement interfaces
var (
	_ AccountManager = (*AccountService)(nil)
	_ MoneyMover     = (*MoneyService)(nil)
	_ Authenticator  = (*AuthService)(nil)
)
