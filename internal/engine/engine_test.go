package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/storage"
	"github.com/digibook/digibook/internal/validation"
)

type fixture struct {
	store  *storage.SQLiteStorage
	engine *Engine
	events []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	f := &fixture{store: store}
	f.engine = New(store, publisherFunc(func(kind string, _ any) {
		f.events = append(f.events, kind)
	}))
	return f
}

type publisherFunc func(kind string, payload any)

func (p publisherFunc) Publish(kind string, payload any) { p(kind, payload) }

func (f *fixture) account(t *testing.T, balance float64) *model.Account {
	t.Helper()
	account := &model.Account{Name: "Checking", Type: model.AccountTypeChecking, CurrentBalance: balance}
	if err := f.store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
	return account
}

func (f *fixture) card(t *testing.T, balance float64) *model.CreditCard {
	t.Helper()
	card := &model.CreditCard{
		Name:           "Visa",
		Balance:        balance,
		CreditLimit:    5000,
		InterestRate:   24.99,
		MinimumPayment: 25,
		DueDate:        model.NewDate(2026, 9, 15),
	}
	if err := f.store.CreateCreditCard(context.Background(), card); err != nil {
		t.Fatalf("Failed to create card: %v", err)
	}
	return card
}

func (f *fixture) expense(t *testing.T, amount float64, source model.PaymentSource) *model.FixedExpense {
	t.Helper()
	category := "Other"
	if source.Kind == model.SourceCreditCardPayment {
		category = model.CategoryCreditCardPayment
	}
	expense := &model.FixedExpense{
		Name:     "Test Expense",
		Amount:   amount,
		Category: category,
		DueDate:  model.NewDate(2026, 9, 1),
		Status:   model.ExpenseStatusPending,
		Source:   source,
	}
	if err := f.store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}
	return expense
}

func TestApplyPaymentAccountFunded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 500)
	expense := f.expense(t, 120, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})

	if err := f.engine.ApplyPayment(ctx, expense.ID, 120); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	if gotAccount.CurrentBalance != 380 {
		t.Errorf("Expected balance 380, got %v", gotAccount.CurrentBalance)
	}

	gotExpense, _ := f.store.GetExpense(ctx, expense.ID)
	if gotExpense.PaidAmount != 120 || gotExpense.Status != model.ExpenseStatusPaid {
		t.Errorf("Expected paid 120/paid, got %v/%s", gotExpense.PaidAmount, gotExpense.Status)
	}

	records, err := f.store.GetAuditRecords(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get audit records: %v", err)
	}
	if len(records) != 1 || records[0].Kind != model.AuditExpensePayment || records[0].Delta != 120 {
		t.Errorf("Expected one expense_payment audit with delta 120, got %+v", records)
	}

	if len(f.events) != 1 || f.events[0] != EventPaymentApplied {
		t.Errorf("Expected one payment_applied event, got %v", f.events)
	}
}

func TestApplyPaymentCardCharged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	card := f.card(t, 0)
	expense := f.expense(t, 80, model.PaymentSource{Kind: model.SourceCreditCard, CreditCardID: card.ID})

	if err := f.engine.ApplyPayment(ctx, expense.ID, 80); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}

	gotCard, _ := f.store.GetCreditCard(ctx, card.ID)
	if gotCard.Balance != 80 {
		t.Errorf("Expected card balance 80, got %v", gotCard.Balance)
	}
	gotExpense, _ := f.store.GetExpense(ctx, expense.ID)
	if gotExpense.Status != model.ExpenseStatusPaid {
		t.Errorf("Expected status paid, got %s", gotExpense.Status)
	}
}

func TestApplyPaymentRoutesCardPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 1000)
	card := f.card(t, 600)
	expense := f.expense(t, 300, model.PaymentSource{
		Kind:               model.SourceCreditCardPayment,
		AccountID:          account.ID,
		TargetCreditCardID: card.ID,
	})

	if err := f.engine.ApplyPayment(ctx, expense.ID, 300); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	gotCard, _ := f.store.GetCreditCard(ctx, card.ID)
	if gotAccount.CurrentBalance != 700 || gotCard.Balance != 300 {
		t.Errorf("Expected 700/300, got %v/%v", gotAccount.CurrentBalance, gotCard.Balance)
	}

	records, _ := f.store.GetAuditRecords(ctx, 10)
	if len(records) != 1 {
		t.Fatalf("Expected one audit record, got %d", len(records))
	}
	if len(records[0].Participants) != 2 {
		t.Errorf("Expected both participants recorded, got %+v", records[0].Participants)
	}
	// Funding account is always recorded before the target card.
	if records[0].Participants[0].Entity != "account" || records[0].Participants[1].Entity != "creditCard" {
		t.Errorf("Unexpected participant order: %+v", records[0].Participants)
	}
}

func TestOverpaymentWarnedButAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 500)
	card := f.card(t, 100)
	expense := f.expense(t, 150, model.PaymentSource{
		Kind:               model.SourceCreditCardPayment,
		AccountID:          account.ID,
		TargetCreditCardID: card.ID,
	})

	res := validation.ValidateCreditCardPaymentAmount(account, card, 150)
	if !res.OK {
		t.Fatalf("Expected validation to pass, got errors %v", res.Errors)
	}
	if len(res.Warnings) != 1 || res.Info.Surplus != 50 {
		t.Errorf("Expected one overpayment warning with surplus 50, got %+v", res)
	}

	if err := f.engine.ApplyPayment(ctx, expense.ID, 150); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	gotCard, _ := f.store.GetCreditCard(ctx, card.ID)
	if gotAccount.CurrentBalance != 350 || gotCard.Balance != -50 {
		t.Errorf("Expected 350/-50, got %v/%v", gotAccount.CurrentBalance, gotCard.Balance)
	}
}

func TestInsufficientFundsRejectedByValidation(t *testing.T) {
	f := newFixture(t)

	account := f.account(t, 50)
	card := f.card(t, 500)

	res := validation.ValidateCreditCardPaymentAmount(account, card, 100)
	if res.OK {
		t.Fatal("Expected validation to fail")
	}
	found := false
	for _, issue := range res.Errors {
		if issue.Code == validation.CodeInsufficientFunds {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected InsufficientFunds, got %+v", res.Errors)
	}
}

func TestApplyPaymentIdempotence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 500)
	expense := f.expense(t, 100, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})

	if err := f.engine.ApplyPayment(ctx, expense.ID, 75); err != nil {
		t.Fatalf("First ApplyPayment failed: %v", err)
	}
	// The second identical call is a zero-delta no-op.
	if err := f.engine.ApplyPayment(ctx, expense.ID, 75); err != nil {
		t.Fatalf("Second ApplyPayment failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	if gotAccount.CurrentBalance != 425 {
		t.Errorf("Expected balance 425, got %v", gotAccount.CurrentBalance)
	}
	records, _ := f.store.GetAuditRecords(ctx, 10)
	if len(records) != 1 {
		t.Errorf("Expected one audit record, got %d", len(records))
	}
}

func TestApplyPaymentReversal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 1000)
	card := f.card(t, 400)
	expense := f.expense(t, 200, model.PaymentSource{
		Kind:               model.SourceCreditCardPayment,
		AccountID:          account.ID,
		TargetCreditCardID: card.ID,
	})

	if err := f.engine.ApplyPayment(ctx, expense.ID, 200); err != nil {
		t.Fatalf("ApplyPayment failed: %v", err)
	}
	if err := f.engine.ApplyPayment(ctx, expense.ID, 0); err != nil {
		t.Fatalf("Reversal failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	gotCard, _ := f.store.GetCreditCard(ctx, card.ID)
	if gotAccount.CurrentBalance != 1000 || gotCard.Balance != 400 {
		t.Errorf("Expected balances restored to 1000/400, got %v/%v",
			gotAccount.CurrentBalance, gotCard.Balance)
	}
	gotExpense, _ := f.store.GetExpense(ctx, expense.ID)
	if gotExpense.Status != model.ExpenseStatusPending {
		t.Errorf("Expected status pending after reversal, got %s", gotExpense.Status)
	}
}

func TestApplyPaymentConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 500)
	expense := f.expense(t, 300, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})

	total := func() float64 {
		a, _ := f.store.GetAccount(ctx, account.ID)
		e, _ := f.store.GetExpense(ctx, expense.ID)
		return a.CurrentBalance + e.PaidAmount
	}

	before := total()
	for _, paid := range []float64{50, 120, 80, 300} {
		if err := f.engine.ApplyPayment(ctx, expense.ID, paid); err != nil {
			t.Fatalf("ApplyPayment(%v) failed: %v", paid, err)
		}
		if got := total(); got != before {
			t.Errorf("Conservation violated after paying %v: %v != %v", paid, got, before)
		}
	}
}

func TestApplyPaymentDanglingReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 100)
	expense := f.expense(t, 50, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})

	// Point the expense at an account that does not exist.
	expense.Source.AccountID = account.ID + 999
	if err := f.store.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to update expense: %v", err)
	}

	err := f.engine.ApplyPayment(ctx, expense.ID, 50)
	if !errors.Is(err, common.ErrDanglingReference) {
		t.Errorf("Expected ErrDanglingReference, got %v", err)
	}

	// The rolled-back transaction must not leave partial state.
	gotExpense, _ := f.store.GetExpense(ctx, expense.ID)
	if gotExpense.PaidAmount != 0 || gotExpense.Status != model.ExpenseStatusPending {
		t.Errorf("Expected expense untouched, got %+v", gotExpense)
	}
}

func TestSettlePendingTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 100)
	pending := &model.PendingTransaction{
		AccountID:   account.ID,
		Amount:      -30,
		Category:    "Other",
		Description: "groceries",
	}
	if err := f.store.CreatePendingTransaction(ctx, pending); err != nil {
		t.Fatalf("Failed to create pending transaction: %v", err)
	}

	if err := f.engine.Settle(ctx, pending.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	if gotAccount.CurrentBalance != 70 {
		t.Errorf("Expected balance 70, got %v", gotAccount.CurrentBalance)
	}
	if _, err := f.store.GetPendingTransaction(ctx, pending.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected pending transaction removed, got %v", err)
	}

	records, _ := f.store.GetAuditRecords(ctx, 10)
	if len(records) != 1 || records[0].Kind != model.AuditPendingSettled {
		t.Errorf("Expected pending_settled audit record, got %+v", records)
	}
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 200)
	expense := f.expense(t, 60, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})

	if err := f.engine.MarkPaid(ctx, expense.ID); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}

	gotExpense, _ := f.store.GetExpense(ctx, expense.ID)
	if gotExpense.PaidAmount != 60 || gotExpense.Status != model.ExpenseStatusPaid {
		t.Errorf("Expected 60/paid, got %v/%s", gotExpense.PaidAmount, gotExpense.Status)
	}
}

func TestEnsureMinimumPaymentExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.account(t, 500)
	card := f.card(t, 1000)

	expense, err := f.engine.EnsureMinimumPaymentExpense(ctx, card.ID)
	if err != nil {
		t.Fatalf("EnsureMinimumPaymentExpense failed: %v", err)
	}
	if expense == nil {
		t.Fatal("Expected an expense to be created")
	}
	if !expense.IsAutoCreated || expense.Category != model.CategoryCreditCardPayment {
		t.Errorf("Unexpected expense: %+v", expense)
	}
	if expense.Source.Kind != model.SourceCreditCardPayment || expense.Source.TargetCreditCardID != card.ID {
		t.Errorf("Unexpected source: %+v", expense.Source)
	}

	// Second call is idempotent for the same due date.
	again, err := f.engine.EnsureMinimumPaymentExpense(ctx, card.ID)
	if err != nil {
		t.Fatalf("Second EnsureMinimumPaymentExpense failed: %v", err)
	}
	if again.ID != expense.ID {
		t.Errorf("Expected existing expense %d, got %d", expense.ID, again.ID)
	}
}

func TestApplyPaymentBusyWhileInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.account(t, 500)
	expense := f.expense(t, 120, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})
	other := f.expense(t, 50, model.PaymentSource{Kind: model.SourceAccount, AccountID: account.ID})

	if !f.engine.acquire(expense.ID) {
		t.Fatal("Failed to acquire idle expense")
	}

	err := f.engine.ApplyPayment(ctx, expense.ID, 120)
	if !errors.Is(err, common.ErrBusy) {
		t.Fatalf("Expected ErrBusy for in-flight expense, got %v", err)
	}

	// The guard is per expense, not global.
	if err := f.engine.ApplyPayment(ctx, other.ID, 50); err != nil {
		t.Fatalf("Payment on a different expense failed: %v", err)
	}

	gotExpense, _ := f.store.GetExpense(ctx, expense.ID)
	if gotExpense.PaidAmount != 0 {
		t.Errorf("Rejected payment must not change paid amount, got %v", gotExpense.PaidAmount)
	}

	f.engine.release(expense.ID)
	if err := f.engine.ApplyPayment(ctx, expense.ID, 120); err != nil {
		t.Fatalf("ApplyPayment after release failed: %v", err)
	}

	gotAccount, _ := f.store.GetAccount(ctx, account.ID)
	if gotAccount.CurrentBalance != 330 {
		t.Errorf("Expected balance 330, got %v", gotAccount.CurrentBalance)
	}
}
