package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digibook/digibook/internal/model"
)

func TestValidatePaymentSource(t *testing.T) {
	tests := []struct {
		name     string
		category string
		source   model.PaymentSource
		wantOK   bool
		wantCode string
	}{
		{
			name:     "account source",
			category: "Housing",
			source:   model.PaymentSource{Kind: model.SourceAccount, AccountID: 1},
			wantOK:   true,
		},
		{
			name:     "card source",
			category: "Subscriptions",
			source:   model.PaymentSource{Kind: model.SourceCreditCard, CreditCardID: 2},
			wantOK:   true,
		},
		{
			name:     "card payment source",
			category: model.CategoryCreditCardPayment,
			source:   model.PaymentSource{Kind: model.SourceCreditCardPayment, AccountID: 1, TargetCreditCardID: 2},
			wantOK:   true,
		},
		{
			name:     "missing source",
			category: "Housing",
			source:   model.PaymentSource{},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
		{
			name:     "account source without account",
			category: "Housing",
			source:   model.PaymentSource{Kind: model.SourceAccount},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
		{
			name:     "both account and card set",
			category: "Housing",
			source:   model.PaymentSource{Kind: model.SourceAccount, AccountID: 1, CreditCardID: 2},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
		{
			name:     "card payment kind outside its category",
			category: "Housing",
			source:   model.PaymentSource{Kind: model.SourceCreditCardPayment, AccountID: 1, TargetCreditCardID: 2},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
		{
			name:     "card payment category with plain account source",
			category: model.CategoryCreditCardPayment,
			source:   model.PaymentSource{Kind: model.SourceAccount, AccountID: 1},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
		{
			name:     "card payment source missing target",
			category: model.CategoryCreditCardPayment,
			source:   model.PaymentSource{Kind: model.SourceCreditCardPayment, AccountID: 1},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
		{
			name:     "target card on regular source",
			category: "Housing",
			source:   model.PaymentSource{Kind: model.SourceAccount, AccountID: 1, TargetCreditCardID: 2},
			wantOK:   false,
			wantCode: CodeInvalidPaymentSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := &model.FixedExpense{Category: tt.category, Source: tt.source}
			res := ValidatePaymentSource(expense)
			assert.Equal(t, tt.wantOK, res.OK)
			if !tt.wantOK {
				assert.True(t, hasIssue(res.Errors, tt.wantCode), "expected %s in %v", tt.wantCode, res.Errors)
			}
		})
	}
}
