package model

import "time"

// ExpenseStatus indicates whether an expense has been fully paid.
type ExpenseStatus string

const (
	// ExpenseStatusPending means paidAmount has not yet reached amount.
	ExpenseStatusPending ExpenseStatus = "pending"
	// ExpenseStatusPaid means paidAmount covers the full amount.
	ExpenseStatusPaid ExpenseStatus = "paid"
)

// PaymentSourceKind tags the PaymentSource union.
type PaymentSourceKind string

const (
	// SourceAccount funds a regular expense from a checking/savings account.
	SourceAccount PaymentSourceKind = "account"
	// SourceCreditCard charges a regular expense to a credit card.
	SourceCreditCard PaymentSourceKind = "creditCard"
	// SourceCreditCardPayment routes funds from an account to pay down a
	// card; only valid for expenses in the Credit Card Payment category.
	SourceCreditCardPayment PaymentSourceKind = "creditCardPayment"
)

// PaymentSource is a tagged union describing where an expense's money comes
// from. Exactly the fields for the tagged kind are set:
//
//	account:           AccountID
//	creditCard:        CreditCardID
//	creditCardPayment: AccountID (funding) + TargetCreditCardID
type PaymentSource struct {
	Kind               PaymentSourceKind `json:"kind"`
	AccountID          int64             `json:"accountId,omitempty"`
	CreditCardID       int64             `json:"creditCardId,omitempty"`
	TargetCreditCardID int64             `json:"targetCreditCardId,omitempty"`
}

// FixedExpense is a recurring line item with a budget (Amount) and payment
// progress (PaidAmount).
type FixedExpense struct {
	CreatedAt     time.Time     `json:"createdAt"`
	DueDate       Date          `json:"dueDate"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Status        ExpenseStatus `json:"status"`
	Source        PaymentSource `json:"paymentSource"`
	ID            int64         `json:"id"`
	Amount        float64       `json:"amount"`
	PaidAmount    float64       `json:"paidAmount"`
	IsAutoCreated bool          `json:"isAutoCreated,omitempty"`
}

// Remaining returns how much is still owed, never negative.
func (e *FixedExpense) Remaining() float64 {
	return max(e.Amount-e.PaidAmount, 0)
}

// Overpayment returns the amount paid beyond the budget, never negative.
func (e *FixedExpense) Overpayment() float64 {
	return max(e.PaidAmount-e.Amount, 0)
}

// OverpaymentPercentage returns the overpayment relative to the budget as a
// percentage. Zero-amount expenses report zero.
func (e *FixedExpense) OverpaymentPercentage() float64 {
	if e.Amount == 0 {
		return 0
	}
	return (e.PaidAmount - e.Amount) / e.Amount * 100
}

// SignificantOverpayment reports whether the expense is overpaid by more
// than 20%.
func (e *FixedExpense) SignificantOverpayment() bool {
	return e.OverpaymentPercentage() > 20
}

// StatusFor derives the paid/pending status for a given paid amount.
func (e *FixedExpense) StatusFor(paidAmount float64) ExpenseStatus {
	if paidAmount >= e.Amount {
		return ExpenseStatusPaid
	}
	return ExpenseStatusPending
}
