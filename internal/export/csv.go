package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/storage"
)

// ExportCSV serializes each collection as its own CSV document, keyed by
// file name. Amounts use dot decimals, booleans are true/false, dates are
// YYYY-MM-DD, timestamps are ISO-8601 UTC.
func ExportCSV(ctx context.Context, store *storage.SQLiteStorage) (map[string][]byte, error) {
	snap, err := store.CollectSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{}

	accounts, err := writeCSV(
		[]string{"id", "name", "type", "currentBalance", "isDefault", "createdAt"},
		len(snap.Accounts), func(i int) []string {
			a := &snap.Accounts[i]
			return []string{
				formatID(a.ID), a.Name, string(a.Type),
				formatAmount(a.CurrentBalance), formatBool(a.IsDefault), formatTime(a.CreatedAt),
			}
		})
	if err != nil {
		return nil, err
	}
	files["accounts.csv"] = accounts

	cards, err := writeCSV(
		[]string{"id", "name", "balance", "creditLimit", "interestRate", "minimumPayment",
			"dueDate", "statementClosingDate", "createdAt"},
		len(snap.CreditCards), func(i int) []string {
			c := &snap.CreditCards[i]
			closing := ""
			if c.StatementClosingDate != nil {
				closing = c.StatementClosingDate.String()
			}
			return []string{
				formatID(c.ID), c.Name, formatAmount(c.Balance), formatAmount(c.CreditLimit),
				formatAmount(c.InterestRate), formatAmount(c.MinimumPayment),
				c.DueDate.String(), closing, formatTime(c.CreatedAt),
			}
		})
	if err != nil {
		return nil, err
	}
	files["credit_cards.csv"] = cards

	expenses, err := writeCSV(
		[]string{"id", "name", "dueDate", "amount", "paidAmount", "status", "category",
			"sourceKind", "accountId", "creditCardId", "targetCreditCardId", "isAutoCreated", "createdAt"},
		len(snap.FixedExpenses), func(i int) []string {
			e := &snap.FixedExpenses[i]
			return []string{
				formatID(e.ID), e.Name, e.DueDate.String(),
				formatAmount(e.Amount), formatAmount(e.PaidAmount),
				string(e.Status), e.Category, string(e.Source.Kind),
				formatRef(e.Source.AccountID), formatRef(e.Source.CreditCardID),
				formatRef(e.Source.TargetCreditCardID),
				formatBool(e.IsAutoCreated), formatTime(e.CreatedAt),
			}
		})
	if err != nil {
		return nil, err
	}
	files["fixed_expenses.csv"] = expenses

	pending, err := writeCSV(
		[]string{"id", "accountId", "amount", "category", "description", "createdAt"},
		len(snap.PendingTransactions), func(i int) []string {
			p := &snap.PendingTransactions[i]
			return []string{
				formatID(p.ID), formatID(p.AccountID), formatAmount(p.Amount),
				p.Category, p.Description, formatTime(p.CreatedAt),
			}
		})
	if err != nil {
		return nil, err
	}
	files["pending_transactions.csv"] = pending

	categories, err := writeCSV(
		[]string{"id", "name", "color", "icon", "isDefault", "createdAt"},
		len(snap.Categories), func(i int) []string {
			c := &snap.Categories[i]
			return []string{
				formatID(c.ID), c.Name, c.Color, c.Icon,
				formatBool(c.IsDefault), formatTime(c.CreatedAt),
			}
		})
	if err != nil {
		return nil, err
	}
	files["categories.csv"] = categories

	settingsRows := 0
	if snap.PaycheckSettings != nil {
		settingsRows = 1
	}
	settings, err := writeCSV(
		[]string{"lastPaycheckDate", "frequency"},
		settingsRows, func(int) []string {
			return []string{
				snap.PaycheckSettings.LastPaycheckDate.String(),
				string(snap.PaycheckSettings.Frequency),
			}
		})
	if err != nil {
		return nil, err
	}
	files["paycheck_settings.csv"] = settings

	preferences, err := writeCSV(
		[]string{"component", "data", "updatedAt"},
		len(snap.UserPreferences), func(i int) []string {
			p := &snap.UserPreferences[i]
			return []string{p.Component, p.Data, formatTime(p.UpdatedAt)}
		})
	if err != nil {
		return nil, err
	}
	files["user_preferences.csv"] = preferences

	audits, err := writeCSV(
		[]string{"id", "kind", "expenseId", "before", "after", "delta", "participants", "createdAt"},
		len(snap.AuditLogs), func(i int) []string {
			r := &snap.AuditLogs[i]
			// Participants are nested records; they travel as a JSON column.
			participants, _ := json.Marshal(r.Participants)
			return []string{
				r.ID, string(r.Kind), formatRef(r.ExpenseID),
				formatAmount(r.Before), formatAmount(r.After), formatAmount(r.Delta),
				string(participants), formatTime(r.CreatedAt),
			}
		})
	if err != nil {
		return nil, err
	}
	files["audit_logs.csv"] = audits

	return files, nil
}

func writeCSV(header []string, n int, row func(int) []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// formatRef renders optional entity references, blank when unset.
func formatRef(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(model.Quantize(v), 'f', 2, 64)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
