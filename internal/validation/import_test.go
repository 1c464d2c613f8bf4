package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibook/digibook/internal/model"
)

func validPayload(t *testing.T) []byte {
	t.Helper()
	snap := model.Snapshot{
		Version: model.SnapshotVersion,
		Accounts: []model.Account{
			{ID: 1, Name: "Checking", Type: model.AccountTypeChecking, CurrentBalance: 100, IsDefault: true},
		},
		CreditCards: []model.CreditCard{
			{ID: 1, Name: "Visa", Balance: 50, CreditLimit: 1000, DueDate: model.NewDate(2026, 9, 15)},
		},
		FixedExpenses: []model.FixedExpense{
			{
				ID: 1, Name: "Rent", Amount: 900, Category: "Housing",
				Status: model.ExpenseStatusPending,
				Source: model.PaymentSource{Kind: model.SourceAccount, AccountID: 1},
			},
		},
		PendingTransactions: []model.PendingTransaction{
			{ID: 1, AccountID: 1, Amount: -12.5, Category: "Other", Description: "lunch"},
		},
		Categories: []model.Category{{ID: 1, Name: "Housing"}},
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)
	return payload
}

func TestValidateImportAccepts(t *testing.T) {
	res := ValidateImport(validPayload(t))
	require.True(t, res.OK, "errors: %v", res.Errors)
	require.NotNil(t, res.Snapshot)
	assert.Len(t, res.Snapshot.Accounts, 1)
	assert.Equal(t, "Rent", res.Snapshot.FixedExpenses[0].Name)
}

func TestValidateImportRejects(t *testing.T) {
	mutate := func(f func(m map[string]json.RawMessage)) []byte {
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(validPayload(t), &m))
		f(m)
		payload, err := json.Marshal(m)
		require.NoError(t, err)
		return payload
	}

	tests := []struct {
		name     string
		payload  []byte
		wantCode string
	}{
		{
			name:     "not json",
			payload:  []byte("accounts: []"),
			wantCode: CodeMalformed,
		},
		{
			name:     "top level array",
			payload:  []byte("[]"),
			wantCode: CodeMalformed,
		},
		{
			name: "missing version",
			payload: mutate(func(m map[string]json.RawMessage) {
				delete(m, "version")
			}),
			wantCode: CodeMalformed,
		},
		{
			name: "future version",
			payload: mutate(func(m map[string]json.RawMessage) {
				m["version"] = json.RawMessage("99")
			}),
			wantCode: CodeSchemaTooNew,
		},
		{
			name: "missing collection",
			payload: mutate(func(m map[string]json.RawMessage) {
				delete(m, "accounts")
			}),
			wantCode: CodeMalformed,
		},
		{
			name: "collection not an array",
			payload: mutate(func(m map[string]json.RawMessage) {
				m["categories"] = json.RawMessage(`{"name":"x"}`)
			}),
			wantCode: CodeMalformed,
		},
		{
			name: "bad date",
			payload: mutate(func(m map[string]json.RawMessage) {
				m["creditCards"] = json.RawMessage(`[{"name":"Visa","creditLimit":100,"dueDate":"15/09/2026"}]`)
			}),
			wantCode: CodeMalformed,
		},
		{
			name: "invalid payment source",
			payload: mutate(func(m map[string]json.RawMessage) {
				m["fixedExpenses"] = json.RawMessage(
					`[{"name":"Rent","amount":900,"category":"Housing","paymentSource":{"kind":"account"}}]`)
			}),
			wantCode: CodeMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateImport(tt.payload)
			assert.False(t, res.OK)
			assert.True(t, hasIssue(res.Errors, tt.wantCode), "expected %s in %v", tt.wantCode, res.Errors)
		})
	}
}
