// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Application error taxonomy.
var (
	// ErrNotFound indicates a referenced id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDanglingReference indicates a payment source resolves only partially.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrInvalidPaymentSource indicates a structural violation of the payment source union.
	ErrInvalidPaymentSource = errors.New("invalid payment source")
	// ErrInsufficientFunds indicates a payment exceeds the funding account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBusy indicates a concurrent update on the same expense was rejected.
	ErrBusy = errors.New("update in progress")
	// ErrAccountInUse indicates an account cannot be deleted while referenced.
	ErrAccountInUse = errors.New("account referenced by pending transactions")

	// Import and backup errors.
	ErrSchemaTooNew = errors.New("schema version newer than this build")
	ErrMalformed    = errors.New("malformed payload")
	ErrBadPassword  = errors.New("bad password")
	ErrChecksum     = errors.New("backup checksum mismatch")

	// ErrTransactionFailed indicates a persistence layer failure; the caller
	// sees unchanged state.
	ErrTransactionFailed = errors.New("transaction failed")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
