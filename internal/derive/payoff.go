package derive

import (
	"github.com/digibook/digibook/internal/model"
)

// PayoffFailureReason explains why an amortization cannot complete.
type PayoffFailureReason string

const (
	// PaymentBelowInterest means the monthly payment does not cover the
	// interest accrued each month, so the balance never shrinks.
	PaymentBelowInterest PayoffFailureReason = "paymentBelowInterest"
	// PayoffTooLong means the payoff would take more than 50 years.
	PayoffTooLong PayoffFailureReason = "payoffTooLong"
)

// payoffMonthCeiling caps amortization at 50 years.
const payoffMonthCeiling = 600

// PayoffResult is the outcome of a debt payoff amortization.
type PayoffResult struct {
	Success       bool                `json:"success"`
	Reason        PayoffFailureReason `json:"reason,omitempty"`
	Months        int                 `json:"months"`
	TotalInterest float64             `json:"totalInterest"`
	TotalCost     float64             `json:"totalCost"`
	PayoffDate    model.Date          `json:"payoffDate"`
}

// CalculateDebtPayoff amortizes a balance at the given annual percentage
// rate with a fixed monthly payment. It fails with PaymentBelowInterest
// when the payment cannot outpace monthly interest, and with PayoffTooLong
// past the 600-month ceiling.
func CalculateDebtPayoff(balance, monthlyPayment, annualRate float64, today model.Date) PayoffResult {
	if balance <= 0 {
		return PayoffResult{Success: true, PayoffDate: today}
	}

	initialBalance := balance
	monthlyRate := annualRate / 100 / 12

	var totalInterest float64
	months := 0
	for balance > 0.01 {
		interest := balance * monthlyRate
		principal := min(monthlyPayment-interest, balance)
		if principal <= 0 {
			return PayoffResult{Reason: PaymentBelowInterest}
		}
		balance -= principal
		totalInterest += interest
		months++
		if months >= payoffMonthCeiling && balance > 0.01 {
			return PayoffResult{Reason: PayoffTooLong, Months: months}
		}
	}

	return PayoffResult{
		Success:       true,
		Months:        months,
		TotalInterest: model.Quantize(totalInterest),
		TotalCost:     model.Quantize(initialBalance + totalInterest),
		PayoffDate:    today.AddMonths(months),
	}
}
