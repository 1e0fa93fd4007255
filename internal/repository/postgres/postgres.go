package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/GooferByte/positions/internal/models"
	"github.com/GooferByte/positions/internal/repository"

	"github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS transactions (
		seq             BIGSERIAL PRIMARY KEY,
		id              TEXT NOT NULL UNIQUE,
		portfolio_id    TEXT NOT NULL,
		symbol          TEXT NOT NULL,
		type            TEXT NOT NULL,
		shares          BIGINT NOT NULL,
		amount          BIGINT NOT NULL,
		fees            BIGINT NOT NULL,
		taxes           BIGINT NOT NULL,
		executed_at     TIMESTAMPTZ NOT NULL,
		idempotency_key TEXT,
		created_at      TIMESTAMPTZ NOT NULL,
		UNIQUE (portfolio_id, idempotency_key)
	);
	CREATE INDEX IF NOT EXISTS transactions_holding_idx ON transactions (portfolio_id, symbol, executed_at);
	CREATE TABLE IF NOT EXISTS assignments (
		symbol   TEXT NOT NULL,
		category TEXT NOT NULL,
		weight   BIGINT NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (symbol, category)
	);
`

const selectTransactions = `
	SELECT id, portfolio_id, symbol, type, shares, amount, fees, taxes, executed_at, idempotency_key, created_at
	FROM transactions
`

// Repository implements TransactionRepository backed by PostgreSQL.
type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the tables used by the repository if they are missing.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *Repository) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `
		INSERT INTO transactions
		(id, portfolio_id, symbol, type, shares, amount, fees, taxes, executed_at, idempotency_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.PortfolioID, tx.Symbol, tx.Type, tx.Shares, tx.Amount, tx.Fees, tx.Taxes,
		tx.ExecutedAt, nullableString(tx.IdempotencyKey), tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, portfolioID, key string) (*models.Transaction, error) {
	if key == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, selectTransactions+`WHERE portfolio_id = $1 AND idempotency_key = $2`, portfolioID, key)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *Repository) ListTransactions(ctx context.Context, portfolioID, symbol string) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions+`
		WHERE portfolio_id = $1 AND symbol = $2
		ORDER BY executed_at ASC, seq ASC
	`, portfolioID, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) ListTransactionsBefore(ctx context.Context, portfolioID, symbol string, before time.Time) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions+`
		WHERE portfolio_id = $1 AND symbol = $2 AND executed_at < $3
		ORDER BY executed_at ASC, seq ASC
	`, portfolioID, symbol, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) ListSymbols(ctx context.Context, portfolioID string) ([]string, error) {
	const query = `SELECT DISTINCT symbol FROM transactions WHERE portfolio_id = $1 ORDER BY symbol`
	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// SaveAssignments replaces all assignments of a symbol in one transaction.
func (r *Repository) SaveAssignments(ctx context.Context, symbol string, assignments []models.Assignment) error {
	categories := make([]string, len(assignments))
	weights := make([]int64, len(assignments))
	for i, a := range assignments {
		categories[i] = a.Category
		weights[i] = a.Weight
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE symbol = $1`, symbol); err != nil {
		_ = tx.Rollback()
		return err
	}
	const insert = `
		INSERT INTO assignments (symbol, category, weight, position)
		SELECT $1, c, w, p::int
		FROM unnest($2::text[], $3::bigint[]) WITH ORDINALITY AS t(c, w, p)
	`
	if _, err := tx.ExecContext(ctx, insert, symbol, pq.Array(categories), pq.Array(weights)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) ListAssignments(ctx context.Context, symbol string) ([]models.Assignment, error) {
	const query = `SELECT category, weight FROM assignments WHERE symbol = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.Category, &a.Weight); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (models.Transaction, error) {
	var tx models.Transaction
	var idem sql.NullString
	err := row.Scan(&tx.ID, &tx.PortfolioID, &tx.Symbol, &tx.Type, &tx.Shares, &tx.Amount, &tx.Fees, &tx.Taxes,
		&tx.ExecutedAt, &idem, &tx.CreatedAt)
	tx.IdempotencyKey = idem.String
	return tx, err
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	out := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
