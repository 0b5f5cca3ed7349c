package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the balance-bearing ledger record. Balance holds cash-side funds
// receivable by transfer; CardBalance holds card-side funds moved in and out
// by deposit/withdraw. Both are whole currency units and never negative.
type Account struct {
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	CardNumber    string    `json:"card_number" db:"card_number"`
	CVV           string    `json:"cvv" db:"cvv"`
	ExpiryMonth   string    `json:"expiry_month" db:"expiry_month"`
	ExpiryYear    string    `json:"expiry_year" db:"expiry_year"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Balance       int64     `json:"balance" db:"balance"`
	CardBalance   int64     `json:"card_balance" db:"card_balance"`
	ID            uuid.UUID `json:"id" db:"id"`
}

// Sanitized returns a copy safe to hand to outward-facing callers. The hash
// is already excluded from JSON; clearing it keeps it out of logs and cached
// idempotent responses as well.
func (a *Account) Sanitized() *Account {
	cp := *a
	cp.PasswordHash = ""
	return &cp
}
