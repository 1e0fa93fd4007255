package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/GooferByte/positions/internal/models"
	"github.com/GooferByte/positions/internal/repository"
)

type InMemoryRepo struct {
	mu          sync.RWMutex
	txByFolio   map[string][]models.Transaction
	idemIndex   map[string]string
	assignments map[string][]models.Assignment
}

func New() *InMemoryRepo {
	return &InMemoryRepo{
		txByFolio:   make(map[string][]models.Transaction),
		idemIndex:   make(map[string]string),
		assignments: make(map[string][]models.Assignment),
	}
}

func (r *InMemoryRepo) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.IdempotencyKey != "" {
		key := r.key(tx.PortfolioID, tx.IdempotencyKey)
		if _, ok := r.idemIndex[key]; ok {
			return repository.ErrDuplicateTransaction
		}
		r.idemIndex[key] = tx.ID
	}

	r.txByFolio[tx.PortfolioID] = append(r.txByFolio[tx.PortfolioID], tx)
	return nil
}

func (r *InMemoryRepo) FindByIdempotencyKey(ctx context.Context, portfolioID, key string) (*models.Transaction, error) {
	if key == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.idemIndex[r.key(portfolioID, key)]; ok {
		for _, tx := range r.txByFolio[portfolioID] {
			if tx.ID == id {
				copy := tx
				return &copy, nil
			}
		}
	}
	return nil, nil
}

func (r *InMemoryRepo) ListTransactions(ctx context.Context, portfolioID, symbol string) ([]models.Transaction, error) {
	return r.list(portfolioID, symbol, func(models.Transaction) bool { return true }), nil
}

func (r *InMemoryRepo) ListTransactionsBefore(ctx context.Context, portfolioID, symbol string, before time.Time) ([]models.Transaction, error) {
	return r.list(portfolioID, symbol, func(tx models.Transaction) bool {
		return tx.ExecutedAt.Before(before)
	}), nil
}

func (r *InMemoryRepo) ListSymbols(ctx context.Context, portfolioID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbols := []string{}
	for _, tx := range r.txByFolio[portfolioID] {
		if !slices.Contains(symbols, tx.Symbol) {
			symbols = append(symbols, tx.Symbol)
		}
	}
	slices.Sort(symbols)
	return symbols, nil
}

func (r *InMemoryRepo) SaveAssignments(ctx context.Context, symbol string, assignments []models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(assignments) == 0 {
		delete(r.assignments, symbol)
		return nil
	}
	r.assignments[symbol] = slices.Clone(assignments)
	return nil
}

func (r *InMemoryRepo) ListAssignments(ctx context.Context, symbol string) ([]models.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Assignment{}, r.assignments[symbol]...), nil
}

func (r *InMemoryRepo) list(portfolioID, symbol string, keep func(models.Transaction) bool) []models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	txs := []models.Transaction{}
	for _, tx := range r.txByFolio[portfolioID] {
		if tx.Symbol == symbol && keep(tx) {
			txs = append(txs, tx)
		}
	}
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return a.ExecutedAt.Compare(b.ExecutedAt)
	})
	return txs
}

func (r *InMemoryRepo) key(portfolioID, idem string) string {
	return portfolioID + "::" + idem
}
