// Package service defines the interfaces between the engine, derivations,
// and the persistence layer.
package service

import (
	"context"

	"github.com/digibook/digibook/internal/model"
)

// ExpenseFilter defines composable filtering options for expense queries.
// Zero values mean "no constraint".
type ExpenseFilter struct {
	Category  string
	Status    string // paid, unpaid, overdue
	Search    string // case-insensitive substring on name or category
	AccountID int64
}

// Storage defines the contract for the persistence layer. All mutation goes
// through it; implementations commit each call atomically unless the call is
// made on a Transaction.
type Storage interface {
	// Account operations.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id int64) error
	SetDefaultAccount(ctx context.Context, id int64) error

	// Credit card operations.
	CreateCreditCard(ctx context.Context, card *model.CreditCard) error
	GetCreditCard(ctx context.Context, id int64) (*model.CreditCard, error)
	GetCreditCards(ctx context.Context) ([]model.CreditCard, error)
	UpdateCreditCard(ctx context.Context, card *model.CreditCard) error
	DeleteCreditCard(ctx context.Context, id int64) error

	// Category operations.
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	// Fixed expense operations.
	CreateExpense(ctx context.Context, expense *model.FixedExpense) error
	GetExpense(ctx context.Context, id int64) (*model.FixedExpense, error)
	GetExpenses(ctx context.Context) ([]model.FixedExpense, error)
	UpdateExpense(ctx context.Context, expense *model.FixedExpense) error
	DeleteExpense(ctx context.Context, id int64) error

	// Pending transaction operations.
	CreatePendingTransaction(ctx context.Context, txn *model.PendingTransaction) error
	GetPendingTransaction(ctx context.Context, id int64) (*model.PendingTransaction, error)
	GetPendingTransactions(ctx context.Context) ([]model.PendingTransaction, error)
	GetPendingTransactionsByAccount(ctx context.Context, accountID int64) ([]model.PendingTransaction, error)
	DeletePendingTransaction(ctx context.Context, id int64) error

	// Paycheck settings (lazy singleton).
	GetPaycheckSettings(ctx context.Context) (*model.PaycheckSettings, error)
	SavePaycheckSettings(ctx context.Context, settings *model.PaycheckSettings) error

	// User preferences, keyed by component.
	GetPreference(ctx context.Context, component string) (*model.UserPreference, error)
	GetPreferences(ctx context.Context) ([]model.UserPreference, error)
	SavePreference(ctx context.Context, pref *model.UserPreference) error

	// Audit log (append-only).
	AppendAudit(ctx context.Context, record *model.AuditRecord) error
	GetAuditRecords(ctx context.Context, limit int) ([]model.AuditRecord, error)

	// Database management.
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. All Storage methods called
// on it share one atomic commit.
type Transaction interface {
	Commit() error
	Rollback() error
	Storage
}
