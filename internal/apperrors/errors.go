package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that forbids the requested change.
var ErrConflict = errors.New("resource state conflict")

// ErrForbidden indicates that the acting identity may not perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// Domain errors of the ledger engine. Services wrap these with fmt.Errorf("%w: ...")
// so handlers can map them to HTTP statuses with errors.Is.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrSelfTransfer         = errors.New("sender and receiver wallets are identical")
	ErrWalletDeactivated    = errors.New("wallet is deactivated")
	ErrWalletDeleted        = errors.New("wallet is deleted")
	ErrNotFamilyMember      = errors.New("payer is not a member of the family")
	ErrAlreadyCancelled     = errors.New("entry is already cancelled")
	ErrNotCancellable       = errors.New("entry status does not permit cancellation")
	ErrMandateAlreadyActive = errors.New("an active mandate already exists")
	ErrEmptyCart            = errors.New("purchase contains no items")
	ErrInvalidProduct       = errors.New("invalid product")
	ErrGroupEmpty           = errors.New("no cancellable entries in group")
	ErrInvalidQuantity      = errors.New("invalid quantity correction")
)

// AppError wraps infrastructure failures (store unavailable, broken tx) with an
// HTTP-ish code so callers can distinguish "your request is invalid" from
// "try again later". Domain errors never use AppError.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that also matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
