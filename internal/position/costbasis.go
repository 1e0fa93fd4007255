package position

import (
	"slices"

	"github.com/shopspring/decimal"
)

// costBasis holds the purchase figures of the shares still held.
type costBasis struct {
	price int64 // per whole share, minor units
	value int64 // minor units
}

// fraction is an exact num/den with den > 0.
type fraction struct {
	num decimal.Decimal
	den decimal.Decimal
}

func zeroFraction() fraction {
	return fraction{num: decimal.Zero, den: decimal.NewFromInt(1)}
}

// add returns f + a*b/c.
func (f fraction) add(a, b, c int64) fraction {
	term := decimal.NewFromInt(a).Mul(decimal.NewFromInt(b))
	lot := decimal.NewFromInt(c)
	if term.Mod(lot).IsZero() {
		return fraction{num: f.num.Add(term.Div(lot).Mul(f.den)), den: f.den}
	}
	return fraction{num: f.num.Mul(lot).Add(term.Mul(f.den)), den: f.den.Mul(lot)}
}

// truncate rounds toward zero.
func (f fraction) truncate() int64 {
	q, _ := f.num.QuoRem(f.den, 0)
	return q.IntPart()
}

// roundQuo returns num/den rounded half away from zero, den > 0.
func roundQuo(num, den decimal.Decimal) int64 {
	q, r := num.QuoRem(den, 0)
	if r.Abs().Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(den) {
		if num.IsNegative() {
			q = q.Sub(decimal.NewFromInt(1))
		} else {
			q = q.Add(decimal.NewFromInt(1))
		}
	}
	return q.IntPart()
}

// fifoCostBasis nets all outbound shares against the oldest inbound lots and
// attributes investment only to the shares that survive. Partial lots are
// apportioned as exact fractions and rounded once at the end: value is
// truncated toward zero, price is rounded half away from zero.
func fifoCostBasis(input []Transaction, shareScale int64) costBasis {
	if len(input) == 0 {
		return costBasis{}
	}

	sorted := slices.Clone(input)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		return day(a.Date).Compare(day(b.Date))
	})

	var sharesSold int64
	for _, t := range sorted {
		if !t.Type.Inbound() {
			sharesSold += t.Shares
		}
	}

	var held int64
	gross := zeroFraction()
	net := zeroFraction()
	for _, t := range sorted {
		if !t.Type.Inbound() {
			continue
		}
		bought := t.Shares
		if sharesSold > 0 {
			sharesSold -= bought
			if sharesSold < 0 {
				bought = -sharesSold
			} else {
				bought = 0
			}
		}
		if bought <= 0 {
			continue
		}

		held += bought
		gross = gross.add(t.Amount, bought, t.Shares)
		net = net.add(t.NetAmount(), bought, t.Shares)
	}

	if held == 0 {
		return costBasis{}
	}
	return costBasis{
		price: roundQuo(net.num.Mul(decimal.NewFromInt(shareScale)), net.den.Mul(decimal.NewFromInt(held))),
		value: gross.truncate(),
	}
}
