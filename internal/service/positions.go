package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GooferByte/positions/internal/logger"
	"github.com/GooferByte/positions/internal/models"
	"github.com/GooferByte/positions/internal/position"
	"github.com/GooferByte/positions/internal/pricing"
	"github.com/GooferByte/positions/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrValidation = errors.New("validation_error")
	ErrDuplicate  = repository.ErrDuplicateTransaction
	ErrNotFound   = errors.New("not_found")
)

// UnassignedCategory collects the weight of a symbol not covered by any
// classification assignment.
const UnassignedCategory = "unassigned"

// PositionService records transactions and values holdings with the position engine.
type PositionService struct {
	repo        repository.TransactionRepository
	priceSvc    pricing.Service
	scale       position.Scale
	minorDigits int32
	now         func() time.Time
	logger      *logrus.Entry
}

// NewPositionService builds a PositionService. scale and minorDigits must
// match the encoding of stored shares and amounts.
func NewPositionService(repo repository.TransactionRepository, priceSvc pricing.Service, scale position.Scale, minorDigits int32, log *logrus.Logger) *PositionService {
	return &PositionService{
		repo:        repo,
		priceSvc:    priceSvc,
		scale:       scale,
		minorDigits: minorDigits,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.Component(log, "position-service"),
	}
}

// RecordTransactionInput is the DTO consumed by the service. Shares and money
// are decimals in whole shares and major currency units.
type RecordTransactionInput struct {
	PortfolioID    string
	Symbol         string
	Type           string
	Shares         decimal.Decimal
	Amount         decimal.Decimal
	Fees           decimal.Decimal
	Taxes          decimal.Decimal
	ExecutedAt     time.Time
	IdempotencyKey string
}

func (s *PositionService) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*models.Transaction, error) {
	portfolioID := strings.TrimSpace(input.PortfolioID)
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if portfolioID == "" || symbol == "" {
		return nil, fmt.Errorf("%w: portfolioId and symbol are required", ErrValidation)
	}
	typ, err := position.ParseType(input.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if input.Shares.Sign() <= 0 {
		return nil, fmt.Errorf("%w: shares must be positive", ErrValidation)
	}
	if input.Amount.Sign() < 0 || input.Fees.Sign() < 0 || input.Taxes.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount, fees and taxes must not be negative", ErrValidation)
	}

	shares, err := s.toScaled(input.Shares, decimal.NewFromInt(s.scale.Shares), "shares")
	if err != nil {
		return nil, err
	}
	minor := decimal.New(1, s.minorDigits)
	amount, err := s.toScaled(input.Amount, minor, "amount")
	if err != nil {
		return nil, err
	}
	fees, err := s.toScaled(input.Fees, minor, "fees")
	if err != nil {
		return nil, err
	}
	taxes, err := s.toScaled(input.Taxes, minor, "taxes")
	if err != nil {
		return nil, err
	}

	executedAt := input.ExecutedAt
	if executedAt.IsZero() {
		executedAt = s.now()
	}
	// calendar days are compared in UTC
	executedAt = executedAt.UTC()
	if existing, _ := s.repo.FindByIdempotencyKey(ctx, portfolioID, input.IdempotencyKey); existing != nil {
		return existing, ErrDuplicate
	}

	tx := models.Transaction{
		ID:             uuid.NewString(),
		PortfolioID:    portfolioID,
		Symbol:         symbol,
		Type:           typ.String(),
		Shares:         shares,
		Amount:         amount,
		Fees:           fees,
		Taxes:          taxes,
		ExecutedAt:     executedAt,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      s.now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"portfolioId": portfolioID,
		"symbol":      symbol,
		"type":        tx.Type,
	}).Debug("transaction recorded")
	return &tx, nil
}

// toScaled converts v into an integer count of 1/factor units and rejects
// values with more precision than the encoding holds.
func (s *PositionService) toScaled(v, factor decimal.Decimal, field string) (int64, error) {
	scaled := v.Mul(factor)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more decimals than supported", ErrValidation, field)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s is out of range", ErrValidation, field)
	}
	return scaled.IntPart(), nil
}

// GetPosition values the current holding of symbol in a portfolio.
func (s *PositionService) GetPosition(ctx context.Context, portfolioID, symbol string) (*models.PositionView, error) {
	symbol = strings.ToUpper(symbol)
	txs, err := s.repo.ListTransactions(ctx, portfolioID, symbol)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions for %s", ErrNotFound, symbol)
	}
	pos, err := s.build(symbol, s.latestQuote(ctx, symbol), txs)
	if err != nil {
		return nil, err
	}
	view := s.view(portfolioID, symbol, pos, txs)
	return &view, nil
}

// GetPositionAsOf values the holding at the end of day, using the historical
// price of that day and the transactions executed up to it.
func (s *PositionService) GetPositionAsOf(ctx context.Context, portfolioID, symbol string, day time.Time) (*models.PositionView, error) {
	symbol = strings.ToUpper(symbol)
	end := startOfDay(day).Add(24 * time.Hour)
	txs, err := s.repo.ListTransactionsBefore(ctx, portfolioID, symbol, end)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions for %s before %s", ErrNotFound, symbol, end.Format("2006-01-02"))
	}

	var quote *position.Quote
	price, err := s.priceSvc.GetHistoricalPrice(ctx, symbol, day)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"symbol": symbol, "date": day.Format("2006-01-02")}).Warn("failed to fetch historical price, valuing without quote")
	} else {
		quote = &position.Quote{Date: startOfDay(day), Value: pricing.MinorUnits(price, s.minorDigits)}
	}

	pos, err := s.build(symbol, quote, txs)
	if err != nil {
		return nil, err
	}
	view := s.view(portfolioID, symbol, pos, txs)
	return &view, nil
}

// GetPortfolio values every symbol held in a portfolio, sorted by symbol.
func (s *PositionService) GetPortfolio(ctx context.Context, portfolioID string) ([]models.PositionView, error) {
	symbols, err := s.repo.ListSymbols(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	views := make([]models.PositionView, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		g.Go(func() error {
			v, err := s.GetPosition(gctx, portfolioID, symbol)
			if err != nil {
				return err
			}
			v.Transactions = nil
			views[i] = *v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// SetClassification replaces the classification assignments of a symbol.
func (s *PositionService) SetClassification(ctx context.Context, symbol string, assignments []models.Assignment) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrValidation)
	}
	var total int64
	seen := map[string]bool{}
	for _, a := range assignments {
		if a.Category == "" || a.Category == UnassignedCategory {
			return fmt.Errorf("%w: invalid category %q", ErrValidation, a.Category)
		}
		if seen[a.Category] {
			return fmt.Errorf("%w: duplicate category %q", ErrValidation, a.Category)
		}
		seen[a.Category] = true
		if a.Weight < 0 || a.Weight > s.scale.Weight {
			return fmt.Errorf("%w: weight of %q must be between 0 and %d", ErrValidation, a.Category, s.scale.Weight)
		}
		total += a.Weight
	}
	if total > s.scale.Weight {
		return fmt.Errorf("%w: weights add up to %d, more than %d", ErrValidation, total, s.scale.Weight)
	}
	return s.repo.SaveAssignments(ctx, symbol, assignments)
}

func (s *PositionService) GetClassification(ctx context.Context, symbol string) ([]models.Assignment, error) {
	return s.repo.ListAssignments(ctx, strings.ToUpper(symbol))
}

// GetBreakdown splits the current holding of symbol across its
// classification categories. Weight not assigned to any category is reported
// under UnassignedCategory.
func (s *PositionService) GetBreakdown(ctx context.Context, portfolioID, symbol string) ([]models.PositionView, error) {
	symbol = strings.ToUpper(symbol)
	txs, err := s.repo.ListTransactions(ctx, portfolioID, symbol)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions for %s", ErrNotFound, symbol)
	}
	assignments, err := s.repo.ListAssignments(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var assigned int64
	for _, a := range assignments {
		assigned += a.Weight
	}
	if rest := s.scale.Weight - assigned; rest > 0 {
		assignments = append(assignments, models.Assignment{Category: UnassignedCategory, Weight: rest})
	}

	pos, err := s.build(symbol, s.latestQuote(ctx, symbol), txs)
	if err != nil {
		return nil, err
	}
	views := make([]models.PositionView, 0, len(assignments))
	for _, a := range assignments {
		v := s.view(portfolioID, symbol, pos.Split(a.Weight), nil)
		v.Category = a.Category
		v.Weight = a.Weight
		views = append(views, v)
	}
	return views, nil
}

func (s *PositionService) latestQuote(ctx context.Context, symbol string) *position.Quote {
	quote, err := s.priceSvc.GetLatestPrice(ctx, symbol)
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("price lookup failed, valuing without quote")
		return nil
	}
	return &position.Quote{Date: quote.Timestamp, Value: pricing.MinorUnits(quote.Price, s.minorDigits)}
}

func (s *PositionService) build(symbol string, quote *position.Quote, txs []models.Transaction) (*position.Position, error) {
	security := &position.Security{ID: symbol, Symbol: symbol}
	converted := make([]position.Transaction, len(txs))
	for i, tx := range txs {
		typ, err := position.ParseType(tx.Type)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		converted[i] = position.Transaction{
			Date:     tx.ExecutedAt.UTC(),
			Security: security,
			Type:     typ,
			Shares:   tx.Shares,
			Amount:   tx.Amount,
			Fees:     tx.Fees,
			Taxes:    tx.Taxes,
		}
	}
	return position.New(s.scale, security, quote, converted), nil
}

func (s *PositionService) view(portfolioID, symbol string, pos *position.Position, txs []models.Transaction) models.PositionView {
	v := models.PositionView{
		PortfolioID:   portfolioID,
		Symbol:        symbol,
		Weight:        s.scale.Weight,
		Shares:        pos.Shares(),
		MarketValue:   pos.MarketValue(),
		PurchasePrice: pos.PurchasePrice(),
		PurchaseValue: pos.PurchaseValue(),
		ProfitLoss:    pos.ProfitLoss(),
		Transactions:  txs,
	}
	if q := pos.Quote(); q != nil {
		v.Price = q.Value
		v.HasPrice = true
	}
	return v
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
