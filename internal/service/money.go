package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agbank/banking-api/internal/db"
	"github.com/agbank/banking-api/internal/models"
	"github.com/agbank/banking-api/internal/repository"
	"github.com/google/uuid"
)

// DepositReq carries the card fields a deposit must present. All four must
// exactly match the account's registered values.
type DepositReq struct {
	AccountID   uuid.UUID
	CardNumber  string
	ExpiryMonth string
	ExpiryYear  string
	CVV         string
	Amount      int64
}

// TransferResult reports both sides of a completed transfer.
type TransferResult struct {
	Sender    *models.Account
	Recipient *models.Account
	Amount    int64
}

// MoneyService moves funds between the cash and card pockets of one account
// (withdraw, deposit) and between the cash balances of two accounts
// (transfer). Every mutation runs inside a single database transaction with
// the touched rows locked, so the read-check-write sequence is serialized per
// account and a rejected operation leaves all balances untouched.
type MoneyService struct {
	db *db.DB
}

// NewMoneyService creates a new MoneyService
func NewMoneyService(database *db.DB) *MoneyService {
	return &MoneyService{db: database}
}

// Withdraw moves amount from the cash balance to the card balance. The
// presented card number must match the account's registered card.
func (s *MoneyService) Withdraw(ctx context.Context, accountID uuid.UUID, cardNumber string, amount int64) (*models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}

	return s.inTransaction(ctx, func(repo repository.AccountRepository) (*models.Account, error) {
		return s.performWithdraw(ctx, repo, accountID, cardNumber, amount)
	})
}

// performWithdraw contains the core withdrawal logic. The account row is
// locked before validation so the balance check and the update are atomic.
func (s *MoneyService) performWithdraw(
	ctx context.Context,
	repo repository.AccountRepository,
	accountID uuid.UUID,
	cardNumber string,
	amount int64,
) (*models.Account, error) {
	account, err := lockAccountByID(ctx, repo, accountID)
	if err != nil {
		return nil, err
	}

	if account.CardNumber != cardNumber {
		return nil, &ServiceError{
			Code:    ErrCodeCardMismatch,
			Message: "card not registered for this account",
		}
	}

	if amount > account.Balance {
		return nil, &ServiceError{
			Code:    ErrCodeInsufficientBalance,
			Message: "insufficient balance",
		}
	}

	if err := repo.AdjustBalances(ctx, account.ID, -amount, amount); err != nil {
		return nil, backendError("failed to adjust balances", err)
	}

	account.Balance -= amount
	account.CardBalance += amount
	return account, nil
}

// Deposit moves amount from the card balance to the cash balance. All four
// presented card fields must match the registered values exactly.
func (s *MoneyService) Deposit(ctx context.Context, req DepositReq) (*models.Account, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}

	return s.inTransaction(ctx, func(repo repository.AccountRepository) (*models.Account, error) {
		return s.performDeposit(ctx, repo, req)
	})
}

// performDeposit contains the core deposit logic.
func (s *MoneyService) performDeposit(
	ctx context.Context,
	repo repository.AccountRepository,
	req DepositReq,
) (*models.Account, error) {
	account, err := lockAccountByID(ctx, repo, req.AccountID)
	if err != nil {
		return nil, err
	}

	validCard := account.CardNumber == req.CardNumber &&
		account.ExpiryMonth == req.ExpiryMonth &&
		account.ExpiryYear == req.ExpiryYear &&
		account.CVV == req.CVV
	if !validCard {
		return nil, &ServiceError{
			Code:    ErrCodeInvalidCardInfo,
			Message: "invalid card information",
		}
	}

	if req.Amount > account.CardBalance {
		return nil, &ServiceError{
			Code:    ErrCodeInsufficientCardBalance,
			Message: "insufficient card balance",
		}
	}

	if err := repo.AdjustBalances(ctx, account.ID, req.Amount, -req.Amount); err != nil {
		return nil, backendError("failed to adjust balances", err)
	}

	account.Balance += req.Amount
	account.CardBalance -= req.Amount
	return account, nil
}

// Transfer moves amount from the sender's cash balance to the cash balance of
// the account identified by recipientAccountNumber. Debit and credit commit
// together or not at all.
func (s *MoneyService) Transfer(ctx context.Context, senderID uuid.UUID, recipientAccountNumber string, amount int64) (*TransferResult, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, &ServiceError{Code: ErrCodeInvalidAmount, Message: err.Error()}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, backendError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	result, err := s.performTransfer(ctx, repository.NewAccountRepository(tx), senderID, recipientAccountNumber, amount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, backendError("failed to commit transaction", err)
	}

	return result, nil
}

// performTransfer contains the core transfer logic. Both rows are locked in
// ascending account-number order so two opposing transfers cannot deadlock,
// and the sender's balance is validated against the locked row, not a stale
// read.
func (s *MoneyService) performTransfer(
	ctx context.Context,
	repo repository.AccountRepository,
	senderID uuid.UUID,
	recipientAccountNumber string,
	amount int64,
) (*TransferResult, error) {
	// Unlocked read to learn the sender's account number for lock ordering.
	sender, err := repo.FindByID(ctx, senderID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &ServiceError{
			Code:    ErrCodeAccountNotFound,
			Message: "account not found",
		}
	}
	if err != nil {
		return nil, backendError("failed to load sender", err)
	}

	if sender.AccountNumber == recipientAccountNumber {
		return nil, &ServiceError{
			Code:    ErrCodeSelfTransfer,
			Message: "cannot send money to your own account, use deposit instead",
		}
	}

	first, second := sender.AccountNumber, recipientAccountNumber
	if first > second {
		first, second = second, first
	}

	locked := make(map[string]*models.Account, 2)
	for _, number := range []string{first, second} {
		account, err := repo.FindByAccountNumberForUpdate(ctx, number)
		if errors.Is(err, models.ErrNotFound) {
			if number == recipientAccountNumber {
				return nil, &ServiceError{
					Code:    ErrCodeRecipientNotFound,
					Message: "invalid account number",
				}
			}
			// Sender row vanished between the read and the lock.
			return nil, &ServiceError{
				Code:    ErrCodeAccountNotFound,
				Message: "account not found",
			}
		}
		if err != nil {
			return nil, backendError("failed to lock account", err)
		}
		locked[number] = account
	}

	sender = locked[sender.AccountNumber]
	recipient := locked[recipientAccountNumber]

	if amount > sender.Balance {
		return nil, &ServiceError{
			Code:    ErrCodeInsufficientBalance,
			Message: "insufficient balance",
		}
	}

	if err := repo.AdjustBalances(ctx, sender.ID, -amount, 0); err != nil {
		return nil, backendError("failed to debit sender", err)
	}
	if err := repo.AdjustBalances(ctx, recipient.ID, amount, 0); err != nil {
		return nil, backendError("failed to credit recipient", err)
	}

	sender.Balance -= amount
	recipient.Balance += amount

	return &TransferResult{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}, nil
}

// inTransaction runs a single-account mutation inside a transaction.
func (s *MoneyService) inTransaction(
	ctx context.Context,
	fn func(repo repository.AccountRepository) (*models.Account, error),
) (*models.Account, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, backendError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	account, err := fn(repository.NewAccountRepository(tx))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, backendError("failed to commit transaction", err)
	}

	return account, nil
}

func lockAccountByID(ctx context.Context, repo repository.AccountRepository, id uuid.UUID) (*models.Account, error) {
	account, err := repo.FindByIDForUpdate(ctx, id)
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
