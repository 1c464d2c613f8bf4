package derive

import (
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/digibook/digibook/internal/model"
)

// Memo caches derivation results keyed by input identity. Derivations are
// pure, so a hit is always exact. Payment and settlement events invalidate
// everything.
type Memo struct {
	cache *ristretto.Cache
}

// NewMemo builds the memo cache and subscribes it to the bus for
// invalidation. bus may be nil.
func NewMemo(bus *Bus) (*Memo, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating derivation cache: %w", err)
	}
	m := &Memo{cache: cache}
	if bus != nil {
		bus.Subscribe(func(Event) { m.Clear() })
	}
	return m, nil
}

// Payoff returns the memoized amortization for the given inputs.
func (m *Memo) Payoff(balance, monthlyPayment, annualRate float64, today model.Date) PayoffResult {
	key := fmt.Sprintf("payoff|%v|%v|%v|%s", balance, monthlyPayment, annualRate, today)
	if v, ok := m.cache.Get(key); ok {
		if res, ok := v.(PayoffResult); ok {
			return res
		}
	}
	res := CalculateDebtPayoff(balance, monthlyPayment, annualRate, today)
	m.cache.Set(key, res, 1)
	return res
}

// Clear drops all memoized results.
func (m *Memo) Clear() {
	m.cache.Clear()
}

// Close releases the underlying cache.
func (m *Memo) Close() {
	m.cache.Close()
}
