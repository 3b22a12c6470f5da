package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MergeResult reports how an ingestion batch landed. Skipped counts records
// whose upstream id was already present.
type MergeResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type TransactionService interface {
	// MergeTransactions inserts a batch of normalized bank records,
	// silently skipping ids already present. The whole batch commits
	// atomically.
	MergeTransactions(ctx context.Context, txns []Transaction) (*MergeResult, error)
	GetTransactions(ctx context.Context) ([]Transaction, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
}

type transactionService struct {
	pool *pgxpool.Pool
}

func NewTransactionService(pool *pgxpool.Pool) TransactionService {
	return &transactionService{pool: pool}
}

func (s *transactionService) MergeTransactions(ctx context.Context, txns []Transaction) (*MergeResult, error) {
	for i, t := range txns {
		if t.ID == "" {
			return nil, fmt.Errorf("transaction %d: missing id: %w", i, ErrValidation)
		}
		if !t.Type.Valid() {
			return nil, fmt.Errorf("transaction %s: invalid type %q: %w", t.ID, t.Type, ErrValidation)
		}
		if t.Amount.IsNegative() {
			return nil, fmt.Errorf("transaction %s: negative amount: %w", t.ID, ErrValidation)
		}
		if _, err := time.Parse(DateLayout, t.Date); err != nil {
			return nil, fmt.Errorf("transaction %s: invalid date %q: %w", t.ID, t.Date, ErrValidation)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &MergeResult{}
	for _, t := range txns {
		tag, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, date, amount, type, description, currency)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.Date, t.Amount, t.Type, t.Description, t.Currency)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
		if tag.RowsAffected() == 0 {
			result.Skipped++
		} else {
			result.Inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction merge: %w", err)
	}
	return result, nil
}

func (s *transactionService) GetTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, date::text, amount, type, description, currency, reconciled, created_at
		FROM transactions
		ORDER BY date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Amount, &t.Type, &t.Description, &t.Currency, &t.Reconciled, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	t := &Transaction{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, date::text, amount, type, description, currency, reconciled, created_at
		FROM transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.Date, &t.Amount, &t.Type, &t.Description, &t.Currency, &t.Reconciled, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", id, err)
	}
	return t, nil
}
