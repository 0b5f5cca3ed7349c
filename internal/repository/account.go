// Package repository provides the data access layer for the banking API.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agbank/banking-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBTX is satisfied by both *db.DB and *sql.Tx, so repositories can run
// standalone or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindAll(ctx context.Context) ([]models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByCardNumber(ctx context.Context, cardNumber string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error)
	AdjustBalances(ctx context.Context, accountID uuid.UUID, balanceDelta, cardBalanceDelta int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// accountRepository implements AccountRepository
type accountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, first_name, last_name, email, phone,
	account_number, card_number, cvv, expiry_month, expiry_year,
	password_hash, balance, card_balance, created_at, updated_at`

// Create inserts a new account row. Unique-constraint violations are mapped
// to the models sentinel for the violated column so the onboarding path can
// distinguish caller conflicts from identifier-generation races.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, first_name, last_name, email, phone,
		                      account_number, card_number, cvv, expiry_month, expiry_year,
		                      password_hash, balance, card_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Phone,
		account.AccountNumber,
		account.CardNumber,
		account.CVV,
		account.ExpiryMonth,
		account.ExpiryYear,
		account.PasswordHash,
		account.Balance,
		account.CardBalance,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// duplicateKeyError maps a postgres unique violation (23505) onto the domain
// sentinel for the constraint that fired, or nil for any other error.
func duplicateKeyError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}

	switch pqErr.Constraint {
	case "accounts_email_key":
		return models.ErrDuplicateEmail
	case "accounts_phone_key":
		return models.ErrDuplicatePhone
	case "accounts_account_number_key":
		return models.ErrDuplicateAccountNumber
	case "accounts_card_number_key":
		return models.ErrDuplicateCardNumber
	}
	return fmt.Errorf("unique violation on %q: %w", pqErr.Constraint, err)
}

// FindByID retrieves an account by its UUID
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "id")
}

// FindByIDForUpdate retrieves an account by UUID and locks its row for the
// duration of the enclosing transaction.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "id")
}

// FindAll retrieves every account, newest first.
func (r *accountRepository) FindAll(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := scanAccount(rows.Scan, &account); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// FindByEmail retrieves an account by registered email (exact match).
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), "email")
}

// FindByAccountNumber retrieves an account by its 9-digit account number
func (r *accountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, accountNumber), "account number")
}

// FindByAccountNumberForUpdate retrieves an account by account number and
// locks its row for the duration of the enclosing transaction.
func (r *accountRepository) FindByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, accountNumber), "account number")
}

// FindByCardNumber retrieves an account by its 16-digit card number
func (r *accountRepository) FindByCardNumber(ctx context.Context, cardNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE card_number = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, cardNumber), "card number")
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *accountRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone = $1)`, phone)
}

func (r *accountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber)
}

func (r *accountRepository) ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE card_number = $1)`, cardNumber)
}

// AdjustBalances applies deltas to both balances. The CHECK constraints are
// the last line of defense against a negative balance; callers validate under
// a FOR UPDATE lock before adjusting.
func (r *accountRepository) AdjustBalances(ctx context.Context, accountID uuid.UUID, balanceDelta, cardBalanceDelta int64) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    card_balance = card_balance + $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, accountID, balanceDelta, cardBalanceDelta)
	if err != nil {
		return fmt.Errorf("failed to adjust account balances: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes an account row.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *accountRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to run existence check: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) scanOne(row *sql.Row, by string) (*models.Account, error) {
	var account models.Account
	err := scanAccount(row.Scan, &account)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by %s: %w", by, err)
	}
	return &account, nil
}

func scanAccount(scan func(dest ...any) error, account *models.Account) error {
	return scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.Phone,
		&account.AccountNumber,
		&account.CardNumber,
		&account.CVV,
		&account.ExpiryMonth,
		&account.ExpiryYear,
		&account.PasswordHash,
		&account.Balance,
		&account.CardBalance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}
