package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// Unique-constraint violations, mapped from the database by constraint.
	// Email and phone collisions are caller conflicts; account and card
	// number collisions mean the generator lost a race and must re-draw.
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicatePhone         = errors.New("phone number already registered")
	ErrDuplicateAccountNumber = errors.New("account number already assigned")
	ErrDuplicateCardNumber    = errors.New("card number already assigned")
)
