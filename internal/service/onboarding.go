package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agbank/banking-api/internal/db"
	"github.com/agbank/banking-api/internal/models"
	"github.com/agbank/banking-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// initialBalance is credited to every new account.
	initialBalance = 500

	// cardValidityYears is added to the creation date to fix the card expiry.
	cardValidityYears = 5

	// maxCreateAttempts bounds insert retries when a generated identifier
	// loses a concurrent-creation race at the unique index.
	maxCreateAttempts = 5
)

// CreateAccountReq carries the caller-supplied fields of a new account.
// Everything else (identifiers, balances, expiry) is derived here.
type CreateAccountReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// AccountService handles account onboarding, lookup and removal
type AccountService struct {
	db *db.DB
}

// NewAccountService creates a new AccountService
func NewAccountService(database *db.DB) *AccountService {
	return &AccountService{db: database}
}

// Create registers a new account: uniqueness preconditions, password
// hashing, identifier generation, initial balances, one persisted row.
func (s *AccountService) Create(ctx context.Context, req CreateAccountReq) (*models.Account, error) {
	if err := validateCreateAccountReq(req); err != nil {
		return nil, err
	}

	repo := repository.NewAccountRepository(s.db)
	return s.performCreate(ctx, repo, req)
}

// performCreate contains the core onboarding logic against a given repository.
func (s *AccountService) performCreate(
	ctx context.Context,
	repo repository.AccountRepository,
	req CreateAccountReq,
) (*models.Account, error) {
	exists, err := repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, backendError("failed to check email", err)
	}
	if exists {
		return nil, &ServiceError{
			Code:    ErrCodeEmailInUse,
			Message: "email is already in use",
		}
	}

	exists, err = repo.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return nil, backendError("failed to check phone number", err)
	}
	if exists {
		return nil, &ServiceError{
			Code:    ErrCodePhoneInUse,
			Message: "phone number is already in use",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeBackendUnavailable,
			Message: "failed to hash password",
			Err:     err,
		}
	}

	expiry := time.Now().AddDate(cardValidityYears, 0, 0)

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		accountNumber, err := generateAccountNumber(ctx, repo)
		if err != nil {
			return nil, backendError("failed to generate account number", err)
		}
		cardNumber, err := generateCardNumber(ctx, repo)
		if err != nil {
			return nil, backendError("failed to generate card number", err)
		}
		cvv, err := generateCVV()
		if err != nil {
			return nil, backendError("failed to generate cvv", err)
		}

		now := time.Now()
		account := &models.Account{
			ID:            uuid.New(),
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Email:         req.Email,
			Phone:         req.Phone,
			AccountNumber: accountNumber,
			CardNumber:    cardNumber,
			CVV:           cvv,
			ExpiryMonth:   expiry.Format("01"),
			ExpiryYear:    expiry.Format("2006"),
			PasswordHash:  string(hash),
			Balance:       initialBalance,
			CardBalance:   0,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err = repo.Create(ctx, account)
		switch {
		case err == nil:
			return account, nil
		case errors.Is(err, models.ErrDuplicateEmail):
			return nil, &ServiceError{
				Code:    ErrCodeEmailInUse,
				Message: "email is already in use",
			}
		case errors.Is(err, models.ErrDuplicatePhone):
			return nil, &ServiceError{
				Code:    ErrCodePhoneInUse,
				Message: "phone number is already in use",
			}
		case errors.Is(err, models.ErrDuplicateAccountNumber),
			errors.Is(err, models.ErrDuplicateCardNumber):
			// Lost an identifier race to a concurrent creation; re-draw.
			continue
		default:
			return nil, backendError("failed to persist account", err)
		}
	}

	return nil, backendError("could not allocate unique identifiers",
		fmt.Errorf("gave up after %d attempts", maxCreateAttempts))
}

// List returns all accounts, newest first.
func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	repo := repository.NewAccountRepository(s.db)
	accounts, err := repo.FindAll(ctx)
	if err != nil {
		return nil, backendError("failed to list accounts", err)
	}
	return accounts, nil
}

// GetByID retrieves a single account by ID.
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	repo := repository.NewAccountRepository(s.db)
	return mapLookup(repo.FindByID(ctx, id))
}

// GetByAccountNumber retrieves a single account by its 9-digit number.
func (s *AccountService) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	repo := repository.NewAccountRepository(s.db)
	return mapLookup(repo.FindByAccountNumber(ctx, accountNumber))
}

// GetByCardNumber retrieves a single account by its 16-digit card number.
func (s *AccountService) GetByCardNumber(ctx context.Context, cardNumber string) (*models.Account, error) {
	repo := repository.NewAccountRepository(s.db)
	return mapLookup(repo.FindByCardNumber(ctx, cardNumber))
}

// Delete removes an account. No cascading effects are defined.
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	repo := repository.NewAccountRepository(s.db)
	err := repo.Delete(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return &ServiceError{
			Code:    ErrCodeAccountNotFound,
			Message: "account not found",
		}
	}
	if err != nil {
		return backendError("failed to delete account", err)
	}
	return nil
}

func mapLookup(account *models.Account, err error) (*models.Account, error) {
	if errors.Is(err, models.ErrNotFound) {
		return nil, &ServiceError{
			Code:    ErrCodeAccountNotFound,
			Message: "account not found",
		}
	}
	if err != nil {
		return nil, backendError("failed to load account", err)
	}
	return account, nil
}

func validateCreateAccountReq(req CreateAccountReq) error {
	if req.FirstName == "" {
		return invalidRequest("first_name must not be empty")
	}
	if req.LastName == "" {
		return invalidRequest("last_name must not be empty")
	}
	if err := ValidateEmail(req.Email); err != nil {
		return invalidRequest(err.Error())
	}
	if err := ValidatePhone(req.Phone); err != nil {
		return invalidRequest(err.Error())
	}
	if err := ValidatePassword(req.Password); err != nil {
		return invalidRequest(err.Error())
	}
	return nil
}

func invalidRequest(msg string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInvalidRequest,
		Message: msg,
	}
}
