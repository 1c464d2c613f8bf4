// Package model defines the core domain entities of the ledger.
package model

import "time"

// AccountType distinguishes the two supported bank account kinds.
type AccountType string

const (
	// AccountTypeChecking is a checking account.
	AccountTypeChecking AccountType = "checking"
	// AccountTypeSavings is a savings account.
	AccountTypeSavings AccountType = "savings"
)

// ValidAccountType reports whether t is one of the allowed account types.
func ValidAccountType(t AccountType) bool {
	return t == AccountTypeChecking || t == AccountTypeSavings
}

// Account represents a bank account. CurrentBalance may go negative
// (overdraft); savings accounts are expected to stay non-negative.
type Account struct {
	CreatedAt      time.Time   `json:"createdAt"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	ID             int64       `json:"id"`
	CurrentBalance float64     `json:"currentBalance"`
	IsDefault      bool        `json:"isDefault"`
}
