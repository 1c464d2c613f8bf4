package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digibook/digibook/internal/model"
)

// EnsureMinimumPaymentExpense creates the auto-generated minimum-payment
// expense for a card's current due date, funded from the default account.
// It is idempotent: an existing auto-created expense for the same card and
// due date is left alone. Cards with no minimum payment are skipped.
func (e *Engine) EnsureMinimumPaymentExpense(ctx context.Context, cardID int64) (*model.FixedExpense, error) {
	card, err := e.storage.GetCreditCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.MinimumPayment <= 0 {
		return nil, nil
	}

	expenses, err := e.storage.GetExpenses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		existing := &expenses[i]
		if existing.IsAutoCreated &&
			existing.Source.TargetCreditCardID == card.ID &&
			existing.DueDate.Equal(card.DueDate.Time) {
			return existing, nil
		}
	}

	accounts, err := e.storage.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	var funding *model.Account
	for i := range accounts {
		if accounts[i].IsDefault {
			funding = &accounts[i]
			break
		}
	}
	if funding == nil {
		return nil, fmt.Errorf("no default account to fund minimum payment for card %q", card.Name)
	}

	expense := &model.FixedExpense{
		Name:          fmt.Sprintf("%s minimum payment", card.Name),
		DueDate:       card.DueDate,
		Amount:        card.MinimumPayment,
		Category:      model.CategoryCreditCardPayment,
		Status:        model.ExpenseStatusPending,
		IsAutoCreated: true,
		Source: model.PaymentSource{
			Kind:               model.SourceCreditCardPayment,
			AccountID:          funding.ID,
			TargetCreditCardID: card.ID,
		},
	}
	if err := e.storage.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Created minimum payment expense",
		"card_id", card.ID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"due_date", expense.DueDate.String())
	return expense, nil
}
