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

// expenseColumns is the scan order shared by every expense query.
const expenseColumns = `id, name, due_date, amount, paid_amount, status, category,
	source_kind, account_id, credit_card_id, target_credit_card_id, is_auto_created, created_at`

func scanExpense(scan func(dest ...any) error) (*model.FixedExpense, error) {
	var e model.FixedExpense
	var accountID, cardID, targetID sql.NullInt64
	err := scan(&e.ID, &e.Name, &e.DueDate, &e.Amount, &e.PaidAmount, &e.Status, &e.Category,
		&e.Source.Kind, &accountID, &cardID, &targetID, &e.IsAutoCreated, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Source.AccountID = accountID.Int64
	e.Source.CreditCardID = cardID.Int64
	e.Source.TargetCreditCardID = targetID.Int64
	return &e, nil
}

func sourceColumns(src model.PaymentSource) (accountID, cardID, targetID any) {
	if src.AccountID != 0 {
		accountID = src.AccountID
	}
	if src.CreditCardID != 0 {
		cardID = src.CreditCardID
	}
	if src.TargetCreditCardID != 0 {
		targetID = src.TargetCreditCardID
	}
	return accountID, cardID, targetID
}

// CreateExpense inserts a new fixed expense.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.FixedExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createExpense(ctx, s.db, expense)
}

func (t *sqliteTransaction) CreateExpense(ctx context.Context, expense *model.FixedExpense) error {
	return createExpense(ctx, t.tx, expense)
}

func createExpense(ctx context.Context, q dbtx, expense *model.FixedExpense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	if expense.Status == "" {
		expense.Status = expense.StatusFor(expense.PaidAmount)
	}

	accountID, cardID, targetID := sourceColumns(expense.Source)
	res, err := q.ExecContext(ctx, `
		INSERT INTO fixed_expenses
			(name, due_date, amount, paid_amount, status, category,
			 source_kind, account_id, credit_card_id, target_credit_card_id, is_auto_created, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.Name, expense.DueDate, model.Quantize(expense.Amount), model.Quantize(expense.PaidAmount),
		expense.Status, expense.Category, expense.Source.Kind,
		accountID, cardID, targetID, expense.IsAutoCreated, expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense id: %w", err)
	}
	expense.Amount = model.Quantize(expense.Amount)
	expense.PaidAmount = model.Quantize(expense.PaidAmount)
	return nil
}

// GetExpense returns a fixed expense by id.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id int64) (*model.FixedExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpense(ctx, s.db, id)
}

func (t *sqliteTransaction) GetExpense(ctx context.Context, id int64) (*model.FixedExpense, error) {
	return getExpense(ctx, t.tx, id)
}

func getExpense(ctx context.Context, q dbtx, id int64) (*model.FixedExpense, error) {
	row := q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM fixed_expenses WHERE id = ?`, id)
	e, err := scanExpense(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return e, nil
}

// GetExpenses returns all fixed expenses ordered by creation time.
func (s *SQLiteStorage) GetExpenses(ctx context.Context) ([]model.FixedExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenses(ctx, s.db)
}

func (t *sqliteTransaction) GetExpenses(ctx context.Context) ([]model.FixedExpense, error) {
	return getExpenses(ctx, t.tx)
}

func getExpenses(ctx context.Context, q dbtx) ([]model.FixedExpense, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+expenseColumns+` FROM fixed_expenses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.FixedExpense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// UpdateExpense persists changes to an existing fixed expense.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense *model.FixedExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateExpense(ctx, s.db, expense)
}

func (t *sqliteTransaction) UpdateExpense(ctx context.Context, expense *model.FixedExpense) error {
	return updateExpense(ctx, t.tx, expense)
}

func updateExpense(ctx context.Context, q dbtx, expense *model.FixedExpense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}

	accountID, cardID, targetID := sourceColumns(expense.Source)
	res, err := q.ExecContext(ctx, `
		UPDATE fixed_expenses
		SET name = ?, due_date = ?, amount = ?, paid_amount = ?, status = ?, category = ?,
			source_kind = ?, account_id = ?, credit_card_id = ?, target_credit_card_id = ?, is_auto_created = ?
		WHERE id = ?`,
		expense.Name, expense.DueDate, model.Quantize(expense.Amount), model.Quantize(expense.PaidAmount),
		expense.Status, expense.Category, expense.Source.Kind,
		accountID, cardID, targetID, expense.IsAutoCreated, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: expense %d", common.ErrNotFound, expense.ID)
	}
	expense.Amount = model.Quantize(expense.Amount)
	expense.PaidAmount = model.Quantize(expense.PaidAmount)
	return nil
}

// DeleteExpense removes a fixed expense.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteExpense(ctx, s.db, id)
}

func (t *sqliteTransaction) DeleteExpense(ctx context.Context, id int64) error {
	return deleteExpense(ctx, t.tx, id)
}

func deleteExpense(ctx context.Context, q dbtx, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM fixed_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: expense %d", common.ErrNotFound, id)
	}
	return nil
}
