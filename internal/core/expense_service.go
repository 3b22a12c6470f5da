package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ExpenseInput holds the fields for recording an expense.
type ExpenseInput struct {
	Category    string
	Description string
	Amount      decimal.Decimal
	Date        string // YYYY-MM-DD; empty means today
}

// ExpenseService records and lists expenses. The paid flag is flipped only
// by reconciliation.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input ExpenseInput) (*Expense, error)
	GetExpenses(ctx context.Context, unpaidOnly bool) ([]Expense, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
}

type expenseService struct {
	pool *pgxpool.Pool
}

// NewExpenseService constructs an ExpenseService backed by PostgreSQL.
func NewExpenseService(pool *pgxpool.Pool) ExpenseService {
	return &expenseService{pool: pool}
}

func (s *expenseService) CreateExpense(ctx context.Context, input ExpenseInput) (*Expense, error) {
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("expense amount must be non-negative: %w", ErrValidation)
	}
	date := input.Date
	if date == "" {
		date = time.Now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid expense date %q: %w", input.Date, ErrValidation)
	}

	e := &Expense{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (category, description, amount, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, category, description, amount, date::text, is_paid, created_at
	`, input.Category, input.Description, input.Amount, date).Scan(
		&e.ID, &e.Category, &e.Description, &e.Amount, &e.Date, &e.IsPaid, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) GetExpenses(ctx context.Context, unpaidOnly bool) ([]Expense, error) {
	query := `
		SELECT id, category, description, amount, date::text, is_paid, created_at
		FROM expenses
	`
	if unpaidOnly {
		query += " WHERE is_paid = false"
	}
	query += " ORDER BY date DESC"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.Date, &e.IsPaid, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (*Expense, error) {
	e := &Expense{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, category, description, amount, date::text, is_paid, created_at
		FROM expenses
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.Date, &e.IsPaid, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("expense %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch expense %s: %w", id, err)
	}
	return e, nil
}
