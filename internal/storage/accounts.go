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

// CreateAccount inserts a new account. The first account in the store
// becomes the default automatically.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createAccount(ctx, s.db, account)
}

func (t *sqliteTransaction) CreateAccount(ctx context.Context, account *model.Account) error {
	return createAccount(ctx, t.tx, account)
}

func createAccount(ctx context.Context, q dbtx, account *model.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}

	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if count == 0 {
		account.IsDefault = true
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	if account.IsDefault {
		if _, err := q.ExecContext(ctx, `UPDATE accounts SET is_default = 0`); err != nil {
			return fmt.Errorf("failed to clear default flag: %w", err)
		}
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO accounts (name, type, current_balance, is_default, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		account.Name, account.Type, model.Quantize(account.CurrentBalance),
		account.IsDefault, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	account.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account id: %w", err)
	}
	account.CurrentBalance = model.Quantize(account.CurrentBalance)
	return nil
}

// GetAccount returns an account by id.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccount(ctx, s.db, id)
}

func (t *sqliteTransaction) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	return getAccount(ctx, t.tx, id)
}

func getAccount(ctx context.Context, q dbtx, id int64) (*model.Account, error) {
	var a model.Account
	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, current_balance, is_default, created_at
		FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Type, &a.CurrentBalance, &a.IsDefault, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &a, nil
}

// GetAccounts returns all accounts ordered by creation time.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccounts(ctx, s.db)
}

func (t *sqliteTransaction) GetAccounts(ctx context.Context) ([]model.Account, error) {
	return getAccounts(ctx, t.tx)
}

func getAccounts(ctx context.Context, q dbtx) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, type, current_balance, is_default, created_at
		FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.CurrentBalance, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount persists changes to an existing account. The default flag is
// managed through SetDefaultAccount and is not touched here.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateAccount(ctx, s.db, account)
}

func (t *sqliteTransaction) UpdateAccount(ctx context.Context, account *model.Account) error {
	return updateAccount(ctx, t.tx, account)
}

func updateAccount(ctx context.Context, q dbtx, account *model.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, current_balance = ?
		WHERE id = ?`,
		account.Name, account.Type, model.Quantize(account.CurrentBalance), account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: account %d", common.ErrNotFound, account.ID)
	}
	account.CurrentBalance = model.Quantize(account.CurrentBalance)
	return nil
}

// DeleteAccount removes an account. Deletion is refused while any pending
// transaction references it. When the default account is deleted, the oldest
// remaining account becomes the default.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteAccount(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (t *sqliteTransaction) DeleteAccount(ctx context.Context, id int64) error {
	return deleteAccount(ctx, t.tx, id)
}

func deleteAccount(ctx context.Context, q dbtx, id int64) error {
	var refs int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_transactions WHERE account_id = ?`, id).Scan(&refs); err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: account %d has %d pending transactions", common.ErrAccountInUse, id, refs)
	}

	var wasDefault bool
	err := q.QueryRowContext(ctx, `SELECT is_default FROM accounts WHERE id = ?`, id).Scan(&wasDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to query account: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if wasDefault {
		// Promote the next account by creation order, if any remain.
		_, err := q.ExecContext(ctx, `
			UPDATE accounts SET is_default = 1
			WHERE id = (SELECT id FROM accounts ORDER BY created_at, id LIMIT 1)`)
		if err != nil {
			return fmt.Errorf("failed to reassign default account: %w", err)
		}
	}
	return nil
}

// SetDefaultAccount marks the given account as the single default.
func (s *SQLiteStorage) SetDefaultAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := setDefaultAccount(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (t *sqliteTransaction) SetDefaultAccount(ctx context.Context, id int64) error {
	return setDefaultAccount(ctx, t.tx, id)
}

func setDefaultAccount(ctx context.Context, q dbtx, id int64) error {
	if _, err := getAccount(ctx, q, id); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `UPDATE accounts SET is_default = 0`); err != nil {
		return fmt.Errorf("failed to clear default flag: %w", err)
	}
	if _, err := q.ExecContext(ctx, `UPDATE accounts SET is_default = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to set default account: %w", err)
	}
	return nil
}
