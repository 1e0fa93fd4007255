package pricing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/GooferByte/positions/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Service exposes price lookup behaviour.
type Service interface {
	GetLatestPrice(ctx context.Context, symbol string) (models.PriceQuote, error)
	GetHistoricalPrice(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error)
}

// RandomPriceService mocks a market data provider with deterministic pseudo-random quotes.
type RandomPriceService struct {
	cache   *cache.Cache // nil when caching is disabled
	nowFunc func() time.Time
}

// NewRandomPriceService caches latest quotes for ttl. A ttl of zero or less
// disables caching; go-cache would otherwise keep entries forever.
func NewRandomPriceService(ttl time.Duration) *RandomPriceService {
	s := &RandomPriceService{nowFunc: time.Now}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *RandomPriceService) GetLatestPrice(ctx context.Context, symbol string) (models.PriceQuote, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(symbol); ok {
			return cached.(models.PriceQuote), nil
		}
	}
	now := s.nowFunc()
	quote := models.PriceQuote{Symbol: symbol, Price: s.generatePrice(symbol, now), Timestamp: now}
	if s.cache != nil {
		s.cache.Set(symbol, quote, cache.DefaultExpiration)
	}
	return quote, nil
}

func (s *RandomPriceService) GetHistoricalPrice(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error) {
	// Normalize to date only to keep values stable per day.
	anchor := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	return s.generatePrice(symbol, anchor), nil
}

func (s *RandomPriceService) generatePrice(symbol string, t time.Time) decimal.Decimal {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s-%d-%d", symbol, t.YearDay(), t.Hour())))
	seed := int64(h.Sum64())
	r := rand.New(rand.NewSource(seed))
	// Price range between 80 and 2000 to mimic liquid stocks.
	price := 80 + r.Float64()*1920
	return decimal.NewFromFloat(price).Round(2)
}

// MinorUnits converts a major-unit price into integer minor units, rounding
// half away from zero on the last kept digit.
func MinorUnits(price decimal.Decimal, digits int32) int64 {
	return price.Shift(digits).Round(0).IntPart()
}
