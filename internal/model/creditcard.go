package model

import "time"

// CreditCard represents a credit card. Balance is outstanding debt and is
// normally non-negative; overpaying a card leaves a credit balance below
// zero, which is preserved as stored.
type CreditCard struct {
	CreatedAt            time.Time `json:"createdAt"`
	DueDate              Date      `json:"dueDate"`
	StatementClosingDate *Date     `json:"statementClosingDate,omitempty"`
	Name                 string    `json:"name"`
	ID                   int64     `json:"id"`
	Balance              float64   `json:"balance"`
	CreditLimit          float64   `json:"creditLimit"`
	InterestRate         float64   `json:"interestRate"`
	MinimumPayment       float64   `json:"minimumPayment"`
}

// AvailableCredit returns the remaining spending headroom on the card.
func (c *CreditCard) AvailableCredit() float64 {
	return c.CreditLimit - c.Balance
}

// OverLimit reports whether the card balance exceeds its limit. This is a
// warning condition, not an enforced invariant.
func (c *CreditCard) OverLimit() bool {
	return c.Balance > c.CreditLimit
}
