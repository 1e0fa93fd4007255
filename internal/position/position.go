// Package position values a single holding from its transaction history.
//
// A Position is an immutable snapshot: it is built from a quote and a list of
// transactions, and derives market value, FIFO purchase price, purchase value
// and profit/loss on first access. Build a new Position whenever the
// transactions or the quote change.
package position

import (
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

// Scale carries the fixed-point factors shared with the rest of the system.
type Scale struct {
	// Shares is the factor used to encode share counts as integers.
	Shares int64
	// Weight is the denominator of classification weights (100%).
	Weight int64
}

// DefaultScale encodes shares with six decimals and weights in hundredths of
// a percent.
var DefaultScale = Scale{Shares: 1_000_000, Weight: 10_000}

func (s Scale) mustBeValid() {
	if s.Shares <= 0 || s.Weight <= 0 {
		panic(fmt.Sprintf("position: invalid scale %+v", s))
	}
}

// Position is the valuation of one holding at a point in time.
type Position struct {
	scale        Scale
	security     *Security
	quote        *Quote
	shares       int64
	transactions []Transaction

	once          sync.Once
	marketValue   int64
	purchasePrice int64
	purchaseValue int64
}

// NewWithShares builds a position without history, such as a cash-like
// holding. It never reports a profit or loss.
func NewWithShares(scale Scale, quote *Quote, shares int64) *Position {
	scale.mustBeValid()
	return &Position{scale: scale, quote: quote, shares: shares}
}

// New builds a position from its transactions. The share count is the signed
// sum of the transactions. The slice is copied.
func New(scale Scale, security *Security, quote *Quote, transactions []Transaction) *Position {
	scale.mustBeValid()
	var shares int64
	for _, t := range transactions {
		shares += t.signedShares()
	}
	return &Position{
		scale:        scale,
		security:     security,
		quote:        quote,
		shares:       shares,
		transactions: slices.Clone(transactions),
	}
}

func (p *Position) Security() *Security { return p.security }
func (p *Position) Quote() *Quote       { return p.quote }
func (p *Position) Shares() int64       { return p.shares }
func (p *Position) Scale() Scale        { return p.scale }

// Transactions returns a copy of the transactions the position was built from.
func (p *Position) Transactions() []Transaction {
	return slices.Clone(p.transactions)
}

// MarketValue is shares times quote, truncated to minor units.
func (p *Position) MarketValue() int64 {
	p.calculate()
	return p.marketValue
}

// PurchasePrice is the average net cost of one whole share still held.
func (p *Position) PurchasePrice() int64 {
	p.calculate()
	return p.purchasePrice
}

// PurchaseValue is the gross cost of the shares still held.
func (p *Position) PurchaseValue() int64 {
	p.calculate()
	return p.purchaseValue
}

// ProfitLoss is market value minus purchase value, or zero without a security.
func (p *Position) ProfitLoss() int64 {
	p.calculate()
	if p.security == nil {
		return 0
	}
	return p.marketValue - p.purchaseValue
}

func (p *Position) calculate() {
	p.once.Do(func() {
		if p.quote != nil {
			value := fraction{
				num: decimal.NewFromInt(p.shares).Mul(decimal.NewFromInt(p.quote.Value)),
				den: decimal.NewFromInt(p.scale.Shares),
			}
			p.marketValue = value.truncate()
		}
		basis := fifoCostBasis(withoutTransferPairs(p.transactions), p.scale.Shares)
		p.purchasePrice = basis.price
		p.purchaseValue = basis.value
	})
}
