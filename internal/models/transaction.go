package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a recorded buy, sell, transfer or delivery of one symbol
// within a portfolio. Shares are scaled by the configured share scale and
// money fields are in minor units.
type Transaction struct {
	ID             string    `json:"id"`
	PortfolioID    string    `json:"portfolioId"`
	Symbol         string    `json:"symbol"`
	Type           string    `json:"type"`
	Shares         int64     `json:"shares"`
	Amount         int64     `json:"amount"`
	Fees           int64     `json:"fees"`
	Taxes          int64     `json:"taxes"`
	ExecutedAt     time.Time `json:"executedAt"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Assignment places a share of a symbol into a classification category.
// Weight is expressed out of the configured weight denominator.
type Assignment struct {
	Category string `json:"category"`
	Weight   int64  `json:"weight"`
}

// PriceQuote models the latest or historical price.
type PriceQuote struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

// PositionView is the valuation of one holding, or of one classification
// bucket of it.
type PositionView struct {
	PortfolioID   string
	Symbol        string
	Category      string
	Weight        int64
	Shares        int64
	Price         int64
	HasPrice      bool
	MarketValue   int64
	PurchasePrice int64
	PurchaseValue int64
	ProfitLoss    int64
	Transactions  []Transaction
}
