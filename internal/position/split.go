package position

import "github.com/shopspring/decimal"

// Split returns the share of p given by weight out of Scale.Weight. Each
// transaction's shares, amount, fees and taxes are scaled and rounded half away
// from zero, and the share count is re-derived from the scaled transactions.
// Quote and security are kept.
func (p *Position) Split(weight int64) *Position {
	p.scale.mustBeValid()
	w := decimal.NewFromInt(weight)
	total := decimal.NewFromInt(p.scale.Weight)
	scaled := func(v int64) int64 {
		return roundQuo(decimal.NewFromInt(v).Mul(w), total)
	}

	if len(p.transactions) == 0 {
		return &Position{
			scale:    p.scale,
			security: p.security,
			quote:    p.quote,
			shares:   scaled(p.shares),
		}
	}

	split := make([]Transaction, len(p.transactions))
	for i, t := range p.transactions {
		split[i] = Transaction{
			Date:     t.Date,
			Security: t.Security,
			Type:     t.Type,
			Shares:   scaled(t.Shares),
			Amount:   scaled(t.Amount),
			Fees:     scaled(t.Fees),
			Taxes:    scaled(t.Taxes),
		}
	}
	return New(p.scale, p.security, p.quote, split)
}
