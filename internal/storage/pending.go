package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
)

// CreatePendingTransaction inserts a new pending transaction. The referenced
// account must exist.
func (s *SQLiteStorage) CreatePendingTransaction(ctx context.Context, txn *model.PendingTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createPending(ctx, s.db, txn)
}

func (t *sqliteTransaction) CreatePendingTransaction(ctx context.Context, txn *model.PendingTransaction) error {
	return createPending(ctx, t.tx, txn)
}

func createPending(ctx context.Context, q dbtx, txn *model.PendingTransaction) error {
	if err := validatePending(txn); err != nil {
		return err
	}
	if _, err := getAccount(ctx, q, txn.AccountID); err != nil {
		return err
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO pending_transactions (account_id, amount, category, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		txn.AccountID, model.Quantize(txn.Amount), txn.Category, txn.Description, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pending transaction: %w", err)
	}

	txn.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get pending transaction id: %w", err)
	}
	txn.Amount = model.Quantize(txn.Amount)
	return nil
}

// GetPendingTransaction returns a pending transaction by id.
func (s *SQLiteStorage) GetPendingTransaction(ctx context.Context, id int64) (*model.PendingTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPending(ctx, s.db, id)
}

func (t *sqliteTransaction) GetPendingTransaction(ctx context.Context, id int64) (*model.PendingTransaction, error) {
	return getPending(ctx, t.tx, id)
}

func getPending(ctx context.Context, q dbtx, id int64) (*model.PendingTransaction, error) {
	var p model.PendingTransaction
	err := q.QueryRowContext(ctx, `
		SELECT id, account_id, amount, category, description, created_at
		FROM pending_transactions WHERE id = ?`, id).
		Scan(&p.ID, &p.AccountID, &p.Amount, &p.Category, &p.Description, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: pending transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transaction: %w", err)
	}
	return &p, nil
}

// GetPendingTransactions returns all pending transactions ordered by creation time.
func (s *SQLiteStorage) GetPendingTransactions(ctx context.Context) ([]model.PendingTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPendingList(ctx, s.db, 0)
}

func (t *sqliteTransaction) GetPendingTransactions(ctx context.Context) ([]model.PendingTransaction, error) {
	return getPendingList(ctx, t.tx, 0)
}

// GetPendingTransactionsByAccount returns pending transactions for one account.
func (s *SQLiteStorage) GetPendingTransactionsByAccount(ctx context.Context, accountID int64) ([]model.PendingTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPendingList(ctx, s.db, accountID)
}

func (t *sqliteTransaction) GetPendingTransactionsByAccount(ctx context.Context, accountID int64) ([]model.PendingTransaction, error) {
	return getPendingList(ctx, t.tx, accountID)
}

func getPendingList(ctx context.Context, q dbtx, accountID int64) ([]model.PendingTransaction, error) {
	query := `
		SELECT id, account_id, amount, category, description, created_at
		FROM pending_transactions`
	args := []any{}
	if accountID != 0 {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.PendingTransaction
	for rows.Next() {
		var p model.PendingTransaction
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Amount, &p.Category, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending transaction: %w", err)
		}
		txns = append(txns, p)
	}
	return txns, rows.Err()
}

// DeletePendingTransaction removes a pending transaction without settling it.
func (s *SQLiteStorage) DeletePendingTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deletePending(ctx, s.db, id)
}

func (t *sqliteTransaction) DeletePendingTransaction(ctx context.Context, id int64) error {
	return deletePending(ctx, t.tx, id)
}

func deletePending(ctx context.Context, q dbtx, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM pending_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: pending transaction %d", common.ErrNotFound, id)
	}
	return nil
}
