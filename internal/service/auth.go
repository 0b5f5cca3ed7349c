package service

import (
	"context"
	"errors"
	"time"

	"github.com/agbank/banking-api/internal/db"
	"github.com/agbank/banking-api/internal/models"
	"github.com/agbank/banking-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult carries the issued bearer token and the authenticated account
// with its password hash cleared.
type LoginResult struct {
	Token   string          `json:"jwt"`
	Account *models.Account `json:"account"`
}

// AuthService verifies credentials and issues time-bounded bearer tokens.
type AuthService struct {
	db       *db.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(database *db.DB, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		db:       database,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Login checks the email/password pair and returns a signed HS256 token on
// success. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := repository.NewAccountRepository(s.db)
	return s.performLogin(ctx, repo, email, password)
}

// performLogin contains the core credential check against a given repository.
func (s *AuthService) performLogin(
	ctx context.Context,
	repo repository.AccountRepository,
	email, password string,
) (*LoginResult, error) {
	account, err := repo.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, backendError("failed to load account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   account.FirstName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, backendError("failed to sign token", err)
	}

	return &LoginResult{
		Token:   token,
		Account: account.Sanitized(),
	}, nil
}

// VerifyToken parses and validates a bearer token issued by Login.
func (s *AuthService) VerifyToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, invalidCredentials()
	}
	return claims, nil
}

func invalidCredentials() *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInvalidCredentials,
		Message: "invalid credentials",
	}
}
