package derive

import (
	"sort"
	"strings"

	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/service"
)

// StatusFilter values accepted by FilterExpenses.
const (
	StatusFilterPaid    = "paid"
	StatusFilterUnpaid  = "unpaid"
	StatusFilterOverdue = "overdue"
)

// SortExpenses orders expenses by due date ascending with zero dates last,
// breaking ties by name. The input slice is sorted in place and returned.
func SortExpenses(expenses []model.FixedExpense) []model.FixedExpense {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := &expenses[i], &expenses[j]
		switch {
		case a.DueDate.IsZero() && b.DueDate.IsZero():
			return a.Name < b.Name
		case a.DueDate.IsZero():
			return false
		case b.DueDate.IsZero():
			return true
		case !a.DueDate.Equal(b.DueDate.Time):
			return a.DueDate.Before(b.DueDate.Time)
		default:
			return a.Name < b.Name
		}
	})
	return expenses
}

// FilterExpenses applies the composable listing filters: category, status
// (paid, unpaid, overdue), funding account, and a case-insensitive
// substring search over name and category.
func FilterExpenses(expenses []model.FixedExpense, filter service.ExpenseFilter, today model.Date) []model.FixedExpense {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]model.FixedExpense, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		if filter.Category != "" && !strings.EqualFold(e.Category, filter.Category) {
			continue
		}
		if !matchStatus(e, filter.Status, today) {
			continue
		}
		if filter.AccountID != 0 && e.Source.AccountID != filter.AccountID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.Category), search) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

func matchStatus(e *model.FixedExpense, status string, today model.Date) bool {
	switch status {
	case "":
		return true
	case StatusFilterPaid:
		return e.Status == model.ExpenseStatusPaid
	case StatusFilterUnpaid:
		return e.Status != model.ExpenseStatusPaid
	case StatusFilterOverdue:
		return e.Status != model.ExpenseStatusPaid &&
			!e.DueDate.IsZero() && e.DueDate.Before(today.Time)
	default:
		return false
	}
}
