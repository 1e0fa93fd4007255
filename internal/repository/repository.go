package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GooferByte/positions/internal/models"
)

var (
	// ErrDuplicateTransaction indicates an idempotent transaction already exists.
	ErrDuplicateTransaction = fmt.Errorf("duplicate transaction")
)

// TransactionRepository abstracts persistence for transactions and
// classification assignments. Listings are ordered by execution time, ties in
// insertion order.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) error
	FindByIdempotencyKey(ctx context.Context, portfolioID, key string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, portfolioID, symbol string) ([]models.Transaction, error)
	ListTransactionsBefore(ctx context.Context, portfolioID, symbol string, before time.Time) ([]models.Transaction, error)
	ListSymbols(ctx context.Context, portfolioID string) ([]string, error)
	SaveAssignments(ctx context.Context, symbol string, assignments []models.Assignment) error
	ListAssignments(ctx context.Context, symbol string) ([]models.Assignment, error)
}
