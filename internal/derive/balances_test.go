package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digibook/digibook/internal/model"
)

func TestProjectedBalance(t *testing.T) {
	account := &model.Account{ID: 1, CurrentBalance: 100}
	pending := []model.PendingTransaction{
		{ID: 1, AccountID: 1, Amount: -30},
		{ID: 2, AccountID: 2, Amount: 10},
		{ID: 3, AccountID: 1, Amount: -20},
	}

	assert.Equal(t, 50.0, ProjectedBalance(account, pending))
	assert.Equal(t, 100.0, ProjectedBalance(account, nil))
}

func TestNetWorthAndTotals(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, CurrentBalance: 1200.50},
		{ID: 2, CurrentBalance: 300},
	}
	cards := []model.CreditCard{
		{ID: 1, Balance: 450.25},
		{ID: 2, Balance: 50},
	}

	assert.Equal(t, 1500.5, LiquidBalance(accounts))
	assert.Equal(t, 500.25, TotalDebt(cards))
	assert.Equal(t, 1000.25, NetWorth(accounts, cards))

	// A card carrying a credit raises net worth.
	cards[1].Balance = -25
	assert.Equal(t, 1075.25, NetWorth(accounts, cards))
}
