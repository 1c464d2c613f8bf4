// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/digibook/digibook/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidAmount  = errors.New("amount must be a finite number")
	ErrInvalidEntity  = errors.New("invalid entity")
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidCard    = errors.New("invalid credit card")
	ErrInvalidExpense = errors.New("invalid expense")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAmount ensures an amount is a usable monetary value.
func validateAmount(amount float64, paramName string) error {
	if !model.IsFinite(amount) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, paramName)
	}
	return nil
}

// validateAccount validates an account before it reaches a write.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if !model.ValidAccountType(account.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, account.Type)
	}
	return validateAmount(account.CurrentBalance, "currentBalance")
}

// validateCreditCard validates a credit card before it reaches a write.
func validateCreditCard(card *model.CreditCard) error {
	if card == nil {
		return fmt.Errorf("%w: credit card", ErrNilParameter)
	}
	if strings.TrimSpace(card.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCard)
	}
	if card.CreditLimit <= 0 {
		return fmt.Errorf("%w: credit limit must be positive", ErrInvalidCard)
	}
	if card.InterestRate < 0 {
		return fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidCard)
	}
	if card.MinimumPayment < 0 {
		return fmt.Errorf("%w: minimum payment cannot be negative", ErrInvalidCard)
	}
	return validateAmount(card.Balance, "balance")
}

// validateExpense validates a fixed expense before it reaches a write.
func validateExpense(expense *model.FixedExpense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if strings.TrimSpace(expense.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if expense.PaidAmount < 0 {
		return fmt.Errorf("%w: paid amount cannot be negative", ErrInvalidExpense)
	}
	switch expense.Status {
	case model.ExpenseStatusPending, model.ExpenseStatusPaid:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidExpense, expense.Status)
	}
	switch expense.Source.Kind {
	case model.SourceAccount, model.SourceCreditCard, model.SourceCreditCardPayment:
	default:
		return fmt.Errorf("%w: unknown payment source kind %q", ErrInvalidExpense, expense.Source.Kind)
	}
	return validateAmount(expense.Amount, "amount")
}

// validatePending validates a pending transaction before it reaches a write.
func validatePending(txn *model.PendingTransaction) error {
	if txn == nil {
		return fmt.Errorf("%w: pending transaction", ErrNilParameter)
	}
	if txn.AccountID == 0 {
		return fmt.Errorf("%w: missing account id", ErrInvalidEntity)
	}
	return validateAmount(txn.Amount, "amount")
}
