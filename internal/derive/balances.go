package derive

import (
	"github.com/digibook/digibook/internal/model"
)

// ProjectedBalance is an account's current balance plus the signed sum of
// all pending transactions against it.
func ProjectedBalance(account *model.Account, pending []model.PendingTransaction) float64 {
	projected := account.CurrentBalance
	for i := range pending {
		if pending[i].AccountID == account.ID {
			projected += pending[i].Amount
		}
	}
	return model.Quantize(projected)
}

// LiquidBalance sums current balances across all accounts.
func LiquidBalance(accounts []model.Account) float64 {
	var total float64
	for i := range accounts {
		total += accounts[i].CurrentBalance
	}
	return model.Quantize(total)
}

// NetWorth is liquid balance minus total credit card debt.
func NetWorth(accounts []model.Account, cards []model.CreditCard) float64 {
	total := LiquidBalance(accounts)
	for i := range cards {
		total -= cards[i].Balance
	}
	return model.Quantize(total)
}

// TotalDebt sums outstanding balances across all cards.
func TotalDebt(cards []model.CreditCard) float64 {
	var total float64
	for i := range cards {
		total += cards[i].Balance
	}
	return model.Quantize(total)
}
