package service

import "fmt"

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidRequest          = "invalid_request"
	ErrCodeInvalidAmount           = "invalid_amount"
	ErrCodeEmailInUse              = "email_in_use"
	ErrCodePhoneInUse              = "phone_in_use"
	ErrCodeAccountNotFound         = "account_not_found"
	ErrCodeRecipientNotFound       = "recipient_not_found"
	ErrCodeCardMismatch            = "card_mismatch"
	ErrCodeInvalidCardInfo         = "invalid_card_info"
	ErrCodeSelfTransfer            = "self_transfer"
	ErrCodeInsufficientBalance     = "insufficient_balance"
	ErrCodeInsufficientCardBalance = "insufficient_card_balance"
	ErrCodeInvalidCredentials      = "invalid_credentials"
	ErrCodeBackendUnavailable      = "backend_unavailable"
)

// backendError wraps a store or driver failure. These are retryable faults,
// never business rejections, and map to 503 at the HTTP boundary.
func backendError(msg string, err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeBackendUnavailable,
		Message: msg,
		Err:     err,
	}
}
