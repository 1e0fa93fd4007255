package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitFixture() *Position {
	scale := Scale{Shares: 1000, Weight: 10_000}
	return New(scale, acme, quote(110), []Transaction{
		{Date: date(1), Security: acme, Type: Buy, Shares: 10_000, Amount: 1000, Fees: 20},
		{Date: date(2), Security: acme, Type: Sell, Shares: 4000, Amount: 420, Fees: 10},
	})
}

func TestSplit_ScalesEveryTransaction(t *testing.T) {
	p := splitFixture()

	part := p.Split(3333)

	txs := part.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, Transaction{Date: date(1), Security: acme, Type: Buy, Shares: 3333, Amount: 333, Fees: 7}, txs[0])
	assert.Equal(t, Transaction{Date: date(2), Security: acme, Type: Sell, Shares: 1333, Amount: 140, Fees: 3}, txs[1])
	assert.Equal(t, int64(2000), part.Shares())
	assert.Same(t, p.Security(), part.Security())
	assert.Same(t, p.Quote(), part.Quote())
}

func TestSplit_ZeroWeight(t *testing.T) {
	part := splitFixture().Split(0)

	assert.Zero(t, part.Shares())
	assert.Zero(t, part.MarketValue())
	assert.Zero(t, part.PurchaseValue())
	assert.Zero(t, part.PurchasePrice())
	for _, tx := range part.Transactions() {
		assert.Zero(t, tx.Shares)
		assert.Zero(t, tx.Amount)
		assert.Zero(t, tx.Fees)
		assert.Zero(t, tx.Taxes)
	}
}

func TestSplit_FullWeightMatchesOriginal(t *testing.T) {
	p := splitFixture()

	part := p.Split(10_000)

	assert.Equal(t, p.Transactions(), part.Transactions())
	assert.Equal(t, p.Shares(), part.Shares())
	assert.Equal(t, p.MarketValue(), part.MarketValue())
	assert.Equal(t, p.PurchaseValue(), part.PurchaseValue())
	assert.Equal(t, p.PurchasePrice(), part.PurchasePrice())
	assert.Equal(t, p.ProfitLoss(), part.ProfitLoss())
}

func TestSplit_PartsAddUpToWhole(t *testing.T) {
	p := splitFixture()

	for _, weight := range []int64{1, 2500, 3333, 5000, 7777} {
		a := p.Split(weight)
		b := p.Split(10_000 - weight)

		bound := float64(len(p.Transactions()))
		assert.Equal(t, p.Shares(), a.Shares()+b.Shares(), "weight %d", weight)
		assert.InDelta(t, p.MarketValue(), a.MarketValue()+b.MarketValue(), bound, "weight %d", weight)
		assert.InDelta(t, p.PurchaseValue(), a.PurchaseValue()+b.PurchaseValue(), bound, "weight %d", weight)
	}
}

func TestSplit_KnownParts(t *testing.T) {
	p := splitFixture()

	a := p.Split(3333)
	b := p.Split(6667)

	assert.Equal(t, int64(220), a.MarketValue())
	assert.Equal(t, int64(199), a.PurchaseValue())
	assert.Equal(t, int64(440), b.MarketValue())
	assert.Equal(t, int64(400), b.PurchaseValue())
}

func TestSplit_WithoutHistory(t *testing.T) {
	scale := Scale{Shares: 1000, Weight: 10_000}
	p := NewWithShares(scale, quote(200), 1000)

	part := p.Split(2500)

	assert.Equal(t, int64(250), part.Shares())
	assert.Equal(t, int64(50), part.MarketValue())
	assert.Zero(t, part.ProfitLoss())
}

func TestSplit_LeavesSourceUntouched(t *testing.T) {
	p := splitFixture()
	before := p.Transactions()

	p.Split(1234)

	assert.Equal(t, before, p.Transactions())
	assert.Equal(t, int64(6000), p.Shares())
}
