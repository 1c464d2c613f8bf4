package derive

import (
	"sort"

	"github.com/digibook/digibook/internal/model"
)

// BudgetSummary aggregates budget-vs-actual across a set of expenses.
type BudgetSummary struct {
	TotalBudget      float64 `json:"totalBudget"`
	TotalActual      float64 `json:"totalActual"`
	TotalOverpayment float64 `json:"totalOverpayment"`
	// BudgetAccuracy is totalActual / totalBudget as a percentage. Zero
	// when there is no budget.
	BudgetAccuracy float64 `json:"budgetAccuracy"`
}

// BudgetVsActual folds amounts and paid amounts across the expenses.
func BudgetVsActual(expenses []model.FixedExpense) BudgetSummary {
	var s BudgetSummary
	for i := range expenses {
		e := &expenses[i]
		s.TotalBudget += e.Amount
		s.TotalActual += e.PaidAmount
		s.TotalOverpayment += e.Overpayment()
	}
	s.TotalBudget = model.Quantize(s.TotalBudget)
	s.TotalActual = model.Quantize(s.TotalActual)
	s.TotalOverpayment = model.Quantize(s.TotalOverpayment)
	if s.TotalBudget != 0 {
		s.BudgetAccuracy = s.TotalActual / s.TotalBudget * 100
	}
	return s
}

// CategoryOverpayment is the overpayment rollup for one category.
type CategoryOverpayment struct {
	Category         string  `json:"category"`
	Count            int     `json:"count"`
	SignificantCount int     `json:"significantCount"`
	TotalBudget      float64 `json:"totalBudget"`
	TotalActual      float64 `json:"totalActual"`
	TotalOverpayment float64 `json:"totalOverpayment"`
	// OverpaymentPercentage is TotalOverpayment relative to TotalBudget, as
	// a percentage. Underpaid categories report zero, matching the clamped
	// per-expense fold.
	OverpaymentPercentage float64 `json:"overpaymentPercentage"`
}

// OverpaymentByCategory groups per-expense overpayments by category,
// counting overpaid and significantly overpaid (>20%) expenses. Results
// are sorted by category name for stable output.
func OverpaymentByCategory(expenses []model.FixedExpense) []CategoryOverpayment {
	byCategory := make(map[string]*CategoryOverpayment)
	for i := range expenses {
		e := &expenses[i]
		c, ok := byCategory[e.Category]
		if !ok {
			c = &CategoryOverpayment{Category: e.Category}
			byCategory[e.Category] = c
		}
		c.TotalBudget += e.Amount
		c.TotalActual += e.PaidAmount
		c.TotalOverpayment += e.Overpayment()
		if e.Overpayment() > 0 {
			c.Count++
		}
		if e.SignificantOverpayment() {
			c.SignificantCount++
		}
	}

	out := make([]CategoryOverpayment, 0, len(byCategory))
	for _, c := range byCategory {
		c.TotalBudget = model.Quantize(c.TotalBudget)
		c.TotalActual = model.Quantize(c.TotalActual)
		c.TotalOverpayment = model.Quantize(c.TotalOverpayment)
		if c.TotalBudget != 0 {
			c.OverpaymentPercentage = c.TotalOverpayment / c.TotalBudget * 100
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
