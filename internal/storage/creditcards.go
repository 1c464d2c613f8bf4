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

// CreateCreditCard inserts a new credit card.
func (s *SQLiteStorage) CreateCreditCard(ctx context.Context, card *model.CreditCard) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createCreditCard(ctx, s.db, card)
}

func (t *sqliteTransaction) CreateCreditCard(ctx context.Context, card *model.CreditCard) error {
	return createCreditCard(ctx, t.tx, card)
}

func createCreditCard(ctx context.Context, q dbtx, card *model.CreditCard) error {
	if err := validateCreditCard(card); err != nil {
		return err
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO credit_cards
			(name, balance, credit_limit, interest_rate, due_date, statement_closing_date, minimum_payment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Name, model.Quantize(card.Balance), card.CreditLimit, card.InterestRate,
		card.DueDate, card.StatementClosingDate, model.Quantize(card.MinimumPayment), card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credit card: %w", err)
	}

	card.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get credit card id: %w", err)
	}
	card.Balance = model.Quantize(card.Balance)
	return nil
}

// GetCreditCard returns a credit card by id.
func (s *SQLiteStorage) GetCreditCard(ctx context.Context, id int64) (*model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCreditCard(ctx, s.db, id)
}

func (t *sqliteTransaction) GetCreditCard(ctx context.Context, id int64) (*model.CreditCard, error) {
	return getCreditCard(ctx, t.tx, id)
}

func getCreditCard(ctx context.Context, q dbtx, id int64) (*model.CreditCard, error) {
	var c model.CreditCard
	var closing sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, name, balance, credit_limit, interest_rate, due_date, statement_closing_date, minimum_payment, created_at
		FROM credit_cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Balance, &c.CreditLimit, &c.InterestRate,
			&c.DueDate, &closing, &c.MinimumPayment, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: credit card %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credit card: %w", err)
	}
	if closing.Valid && closing.String != "" {
		d, perr := model.ParseDate(closing.String)
		if perr != nil {
			return nil, perr
		}
		c.StatementClosingDate = &d
	}
	return &c, nil
}

// GetCreditCards returns all credit cards ordered by creation time.
func (s *SQLiteStorage) GetCreditCards(ctx context.Context) ([]model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCreditCards(ctx, s.db)
}

func (t *sqliteTransaction) GetCreditCards(ctx context.Context) ([]model.CreditCard, error) {
	return getCreditCards(ctx, t.tx)
}

func getCreditCards(ctx context.Context, q dbtx) ([]model.CreditCard, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, balance, credit_limit, interest_rate, due_date, statement_closing_date, minimum_payment, created_at
		FROM credit_cards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.CreditCard
	for rows.Next() {
		var c model.CreditCard
		var closing sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Balance, &c.CreditLimit, &c.InterestRate,
			&c.DueDate, &closing, &c.MinimumPayment, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit card: %w", err)
		}
		if closing.Valid && closing.String != "" {
			d, perr := model.ParseDate(closing.String)
			if perr != nil {
				return nil, perr
			}
			c.StatementClosingDate = &d
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateCreditCard persists changes to an existing credit card.
func (s *SQLiteStorage) UpdateCreditCard(ctx context.Context, card *model.CreditCard) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateCreditCard(ctx, s.db, card)
}

func (t *sqliteTransaction) UpdateCreditCard(ctx context.Context, card *model.CreditCard) error {
	return updateCreditCard(ctx, t.tx, card)
}

func updateCreditCard(ctx context.Context, q dbtx, card *model.CreditCard) error {
	if err := validateCreditCard(card); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE credit_cards
		SET name = ?, balance = ?, credit_limit = ?, interest_rate = ?,
			due_date = ?, statement_closing_date = ?, minimum_payment = ?
		WHERE id = ?`,
		card.Name, model.Quantize(card.Balance), card.CreditLimit, card.InterestRate,
		card.DueDate, card.StatementClosingDate, model.Quantize(card.MinimumPayment), card.ID)
	if err != nil {
		return fmt.Errorf("failed to update credit card: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: credit card %d", common.ErrNotFound, card.ID)
	}
	card.Balance = model.Quantize(card.Balance)
	return nil
}

// DeleteCreditCard removes a credit card. Deletion is refused while any
// expense still references it as a source or payment target.
func (s *SQLiteStorage) DeleteCreditCard(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCreditCard(ctx, s.db, id)
}

func (t *sqliteTransaction) DeleteCreditCard(ctx context.Context, id int64) error {
	return deleteCreditCard(ctx, t.tx, id)
}

func deleteCreditCard(ctx context.Context, q dbtx, id int64) error {
	var refs int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM fixed_expenses
		WHERE credit_card_id = ? OR target_credit_card_id = ?`, id, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: credit card %d is referenced by %d expenses", common.ErrAccountInUse, id, refs)
	}

	res, err := q.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credit card: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: credit card %d", common.ErrNotFound, id)
	}
	return nil
}
