// Package engine implements the payment engine: the only component allowed
// to mutate balances. Every operation runs inside one storage transaction
// and emits an audit record describing what moved.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/service"
)

// Publisher receives change notifications after a transaction commits.
type Publisher interface {
	Publish(kind string, payload any)
}

// Event kinds published post-commit.
const (
	EventPaymentApplied = "payment_applied"
	EventPendingSettled = "pending_settled"
)

// PaymentEvent is the payload published after a successful payment.
type PaymentEvent struct {
	Kind      model.AuditKind
	ExpenseID int64
	Delta     float64
}

// Engine applies payments against expenses and settles pending transactions.
type Engine struct {
	storage   service.Storage
	publisher Publisher
	inFlight  map[int64]struct{}
	mu        sync.Mutex
}

// New creates a payment engine. publisher may be nil.
func New(storage service.Storage, publisher Publisher) *Engine {
	return &Engine{
		storage:   storage,
		publisher: publisher,
		inFlight:  make(map[int64]struct{}),
	}
}

// acquire registers an expense as being updated. A second concurrent update
// on the same expense is rejected rather than queued.
func (e *Engine) acquire(expenseID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[expenseID]; busy {
		return false
	}
	e.inFlight[expenseID] = struct{}{}
	return true
}

func (e *Engine) release(expenseID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, expenseID)
}

// ApplyPayment sets the expense's paid amount to newPaidAmount and applies
// the resulting delta to the balances named by its payment source, all
// within one transaction. A zero delta is a no-op. Concurrent calls for the
// same expense fail with Busy.
func (e *Engine) ApplyPayment(ctx context.Context, expenseID int64, newPaidAmount float64) error {
	if !model.IsFinite(newPaidAmount) || newPaidAmount < 0 {
		return fmt.Errorf("invalid paid amount %v", newPaidAmount)
	}
	if !e.acquire(expenseID) {
		return fmt.Errorf("%w: expense %d", common.ErrBusy, expenseID)
	}
	defer e.release(expenseID)

	newPaidAmount = model.Quantize(newPaidAmount)

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	expense, err := tx.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	delta := model.Quantize(newPaidAmount - expense.PaidAmount)
	if delta == 0 {
		return nil
	}

	before := expense.PaidAmount
	expense.PaidAmount = newPaidAmount
	expense.Status = expense.StatusFor(newPaidAmount)
	if err := tx.UpdateExpense(ctx, expense); err != nil {
		return err
	}

	participants, err := applyDelta(ctx, tx, expense, delta)
	if err != nil {
		return err
	}

	record := &model.AuditRecord{
		Kind:         model.AuditExpensePayment,
		ExpenseID:    expense.ID,
		Before:       before,
		After:        newPaidAmount,
		Delta:        delta,
		Participants: participants,
	}
	if err := tx.AppendAudit(ctx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	slog.Info("Applied payment",
		"expense_id", expense.ID,
		"delta", delta,
		"paid_amount", newPaidAmount,
		"status", expense.Status)

	if e.publisher != nil {
		e.publisher.Publish(EventPaymentApplied, PaymentEvent{
			Kind:      model.AuditExpensePayment,
			ExpenseID: expense.ID,
			Delta:     delta,
		})
	}
	return nil
}

// applyDelta dispatches on the payment source kind and mutates the balances
// it names. The funding account is always written before the target card so
// audit sequencing is reproducible.
func applyDelta(ctx context.Context, tx service.Transaction, expense *model.FixedExpense, delta float64) ([]model.AuditParticipant, error) {
	src := expense.Source
	switch src.Kind {
	case model.SourceAccount:
		account, err := tx.GetAccount(ctx, src.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: funding account %d", common.ErrDanglingReference, src.AccountID)
		}
		before := account.CurrentBalance
		account.CurrentBalance = model.Quantize(account.CurrentBalance - delta)
		if err := tx.UpdateAccount(ctx, account); err != nil {
			return nil, err
		}
		return []model.AuditParticipant{
			{Entity: "account", EntityID: account.ID, Before: before, After: account.CurrentBalance},
		}, nil

	case model.SourceCreditCard:
		card, err := tx.GetCreditCard(ctx, src.CreditCardID)
		if err != nil {
			return nil, fmt.Errorf("%w: credit card %d", common.ErrDanglingReference, src.CreditCardID)
		}
		before := card.Balance
		// Charging the card increases debt; reversing a payment decreases it.
		card.Balance = model.Quantize(card.Balance + delta)
		if err := tx.UpdateCreditCard(ctx, card); err != nil {
			return nil, err
		}
		return []model.AuditParticipant{
			{Entity: "creditCard", EntityID: card.ID, Before: before, After: card.Balance},
		}, nil

	case model.SourceCreditCardPayment:
		account, err := tx.GetAccount(ctx, src.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: funding account %d", common.ErrDanglingReference, src.AccountID)
		}
		card, err := tx.GetCreditCard(ctx, src.TargetCreditCardID)
		if err != nil {
			return nil, fmt.Errorf("%w: target credit card %d", common.ErrDanglingReference, src.TargetCreditCardID)
		}

		accountBefore := account.CurrentBalance
		account.CurrentBalance = model.Quantize(account.CurrentBalance - delta)
		if err := tx.UpdateAccount(ctx, account); err != nil {
			return nil, err
		}

		cardBefore := card.Balance
		card.Balance = model.Quantize(card.Balance - delta)
		if err := tx.UpdateCreditCard(ctx, card); err != nil {
			return nil, err
		}

		return []model.AuditParticipant{
			{Entity: "account", EntityID: account.ID, Before: accountBefore, After: account.CurrentBalance},
			{Entity: "creditCard", EntityID: card.ID, Before: cardBefore, After: card.Balance},
		}, nil

	default:
		return nil, fmt.Errorf("%w: kind %q", common.ErrInvalidPaymentSource, src.Kind)
	}
}

// MarkPaid pays the expense's full budgeted amount.
func (e *Engine) MarkPaid(ctx context.Context, expenseID int64) error {
	expense, err := e.storage.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	return e.ApplyPayment(ctx, expenseID, expense.Amount)
}

// Settle removes a pending transaction and applies its signed amount to the
// referenced account, atomically.
func (e *Engine) Settle(ctx context.Context, pendingID int64) error {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	pending, err := tx.GetPendingTransaction(ctx, pendingID)
	if err != nil {
		return err
	}

	account, err := tx.GetAccount(ctx, pending.AccountID)
	if err != nil {
		return fmt.Errorf("%w: account %d", common.ErrDanglingReference, pending.AccountID)
	}

	before := account.CurrentBalance
	account.CurrentBalance = model.Quantize(account.CurrentBalance + pending.Amount)
	if err := tx.UpdateAccount(ctx, account); err != nil {
		return err
	}
	if err := tx.DeletePendingTransaction(ctx, pendingID); err != nil {
		return err
	}

	record := &model.AuditRecord{
		Kind:  model.AuditPendingSettled,
		Delta: pending.Amount,
		Participants: []model.AuditParticipant{
			{Entity: "account", EntityID: account.ID, Before: before, After: account.CurrentBalance},
		},
	}
	if err := tx.AppendAudit(ctx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	slog.Info("Settled pending transaction",
		"pending_id", pendingID,
		"account_id", account.ID,
		"amount", pending.Amount)

	if e.publisher != nil {
		e.publisher.Publish(EventPendingSettled, PaymentEvent{
			Kind:  model.AuditPendingSettled,
			Delta: pending.Amount,
		})
	}
	return nil
}
