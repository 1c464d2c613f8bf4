package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
)

// CollectSnapshot reads every collection into a Snapshot. The read happens
// within one transaction so the copy is internally consistent.
func (s *SQLiteStorage) CollectSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	snap := &model.Snapshot{
		Version:    model.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
	}

	if snap.Accounts, err = getAccounts(ctx, tx); err != nil {
		return nil, err
	}
	if snap.CreditCards, err = getCreditCards(ctx, tx); err != nil {
		return nil, err
	}
	if snap.FixedExpenses, err = getExpenses(ctx, tx); err != nil {
		return nil, err
	}
	if snap.PendingTransactions, err = getPendingList(ctx, tx, 0); err != nil {
		return nil, err
	}
	if snap.Categories, err = getCategories(ctx, tx); err != nil {
		return nil, err
	}
	if snap.PaycheckSettings, err = getPaycheckSettings(ctx, tx); err != nil {
		return nil, err
	}
	if snap.UserPreferences, err = getPreferences(ctx, tx); err != nil {
		return nil, err
	}
	if snap.AuditLogs, err = getAuditRecords(ctx, tx, 0); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}
	return snap, nil
}

// ApplySnapshot replaces the entire store contents with the snapshot,
// preserving entity ids. It runs in a single transaction; on failure the
// previous state is untouched.
func (s *SQLiteStorage) ApplySnapshot(ctx context.Context, snap *model.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{
		"accounts", "credit_cards", "fixed_expenses", "pending_transactions",
		"categories", "paycheck_settings", "user_preferences", "audit_logs",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i := range snap.Accounts {
		a := &snap.Accounts[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, name, type, current_balance, is_default, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Type, model.Quantize(a.CurrentBalance), a.IsDefault, a.CreatedAt); err != nil {
			return fmt.Errorf("failed to restore account %d: %w", a.ID, err)
		}
	}
	for i := range snap.CreditCards {
		c := &snap.CreditCards[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO credit_cards
				(id, name, balance, credit_limit, interest_rate, due_date, statement_closing_date, minimum_payment, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, model.Quantize(c.Balance), c.CreditLimit, c.InterestRate,
			c.DueDate, c.StatementClosingDate, c.MinimumPayment, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to restore credit card %d: %w", c.ID, err)
		}
	}
	for i := range snap.FixedExpenses {
		e := &snap.FixedExpenses[i]
		accountID, cardID, targetID := sourceColumns(e.Source)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fixed_expenses
				(id, name, due_date, amount, paid_amount, status, category,
				 source_kind, account_id, credit_card_id, target_credit_card_id, is_auto_created, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.DueDate, model.Quantize(e.Amount), model.Quantize(e.PaidAmount),
			e.Status, e.Category, e.Source.Kind, accountID, cardID, targetID,
			e.IsAutoCreated, e.CreatedAt); err != nil {
			return fmt.Errorf("failed to restore expense %d: %w", e.ID, err)
		}
	}
	for i := range snap.PendingTransactions {
		p := &snap.PendingTransactions[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pending_transactions (id, account_id, amount, category, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.AccountID, model.Quantize(p.Amount), p.Category, p.Description, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to restore pending transaction %d: %w", p.ID, err)
		}
	}
	for i := range snap.Categories {
		c := &snap.Categories[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, color, icon, is_default, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Color, c.Icon, c.IsDefault, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to restore category %d: %w", c.ID, err)
		}
	}
	if snap.PaycheckSettings != nil {
		if err := savePaycheckSettings(ctx, tx, snap.PaycheckSettings); err != nil {
			return err
		}
	}
	for i := range snap.UserPreferences {
		p := &snap.UserPreferences[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_preferences (component, data, updated_at)
			VALUES (?, ?, ?)`,
			p.Component, p.Data, p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to restore preference %q: %w", p.Component, err)
		}
	}
	for i := range snap.AuditLogs {
		r := &snap.AuditLogs[i]
		if err := appendAudit(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}
	return nil
}
