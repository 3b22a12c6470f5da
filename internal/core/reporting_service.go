package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TaxSummary aggregates one Australian financial year (1 July to 30 June).
// GSTPaid is estimated as total expenses divided by 11, the GST-inclusive
// back-calculation.
type TaxSummary struct {
	FinancialYear string                     `json:"financial_year"`
	PeriodStart   string                     `json:"period_start"`
	PeriodEnd     string                     `json:"period_end"`
	Income        decimal.Decimal            `json:"income"`
	GSTCollected  decimal.Decimal            `json:"gst_collected"`
	Expenses      decimal.Decimal            `json:"expenses"`
	GSTPaid       decimal.Decimal            `json:"gst_paid"`
	NetProfit     decimal.Decimal            `json:"net_profit"`
	ByCategory    map[string]decimal.Decimal `json:"expenses_by_category"`
}

type ReportingService interface {
	// TaxSummary reports the financial year ending 30 June of endYear.
	// Draft invoices are excluded from income.
	TaxSummary(ctx context.Context, endYear int) (*TaxSummary, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

var gstDivisor = decimal.NewFromInt(11)

func (s *reportingService) TaxSummary(ctx context.Context, endYear int) (*TaxSummary, error) {
	if endYear < 2000 || endYear > 2999 {
		return nil, fmt.Errorf("invalid financial year %d: %w", endYear, ErrValidation)
	}
	start := fmt.Sprintf("%d-07-01", endYear-1)
	end := fmt.Sprintf("%d-06-30", endYear)

	summary := &TaxSummary{
		FinancialYear: fmt.Sprintf("FY%d", endYear),
		PeriodStart:   start,
		PeriodEnd:     end,
		ByCategory:    map[string]decimal.Decimal{},
	}

	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COALESCE(SUM(tax), 0)
		FROM invoices
		WHERE status <> $1 AND issue_date BETWEEN $2 AND $3
	`, InvoiceDraft, start, end).Scan(&summary.Income, &summary.GSTCollected)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate income: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE date BETWEEN $1 AND $2
		GROUP BY category
		ORDER BY category
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense aggregate: %w", err)
		}
		summary.ByCategory[category] = amount
		summary.Expenses = summary.Expenses.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense aggregates: %w", err)
	}

	summary.GSTPaid = summary.Expenses.Div(gstDivisor).Round(2)
	summary.NetProfit = summary.Income.Sub(summary.Expenses)
	return summary, nil
}
