// Package ingest parses bank-export CSV files into normalized transactions.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"butter-invoicing/internal/core"
)

// Internal balance movements are noise for reconciliation and are dropped
// during parsing.
var internalTransferPrefixes = []string{
	"Converted ",
	"Topped up",
	"Balance cashback",
}

const internalIDPrefix = "BALANCE"

// ParseResult carries the kept transactions plus a count of rows filtered
// out as internal transfers.
type ParseResult struct {
	Transactions []core.Transaction
	Filtered     int
}

type columnMap struct {
	id, date, amount, description int
	currency                      int // -1 when absent
}

// mapColumns locates columns by case-insensitive substring match, so
// "TransferWise ID" and "ID" both resolve. Currency is optional; the rest
// are required.
func mapColumns(header []string) (*columnMap, error) {
	cols := &columnMap{id: -1, date: -1, amount: -1, description: -1, currency: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case cols.id == -1 && strings.Contains(name, "id"):
			cols.id = i
		case cols.date == -1 && strings.Contains(name, "date"):
			cols.date = i
		case cols.amount == -1 && strings.Contains(name, "amount"):
			cols.amount = i
		case cols.currency == -1 && strings.Contains(name, "currency"):
			cols.currency = i
		case cols.description == -1 && strings.Contains(name, "description"):
			cols.description = i
		}
	}
	for _, req := range []struct {
		name string
		idx  int
	}{
		{"id", cols.id}, {"date", cols.date}, {"amount", cols.amount}, {"description", cols.description},
	} {
		if req.idx == -1 {
			return nil, fmt.Errorf("missing %s column in CSV header: %w", req.name, core.ErrValidation)
		}
	}
	return cols, nil
}

// Exports vary between ISO and day-first formats.
var dateFormats = []string{core.DateLayout, "02-01-2006", "02/01/2006"}

func parseDate(raw string) (string, error) {
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, raw); err == nil {
			return d.Format(core.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q: %w", raw, core.ErrValidation)
}

func isInternalTransfer(id, description string) bool {
	if strings.HasPrefix(id, internalIDPrefix) {
		return true
	}
	for _, p := range internalTransferPrefixes {
		if strings.HasPrefix(description, p) {
			return true
		}
	}
	return false
}

// ParseWiseCSV reads a Wise balance-statement export. Negative amounts
// become Debit, positive become Credit; amounts are stored absolute. Any
// malformed row fails the whole file so a partial import never commits.
func ParseWiseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		id := strings.TrimSpace(record[cols.id])
		description := strings.TrimSpace(record[cols.description])
		if id == "" {
			return nil, fmt.Errorf("line %d: empty transaction id: %w", line, core.ErrValidation)
		}
		if isInternalTransfer(id, description) {
			result.Filtered++
			continue
		}

		date, err := parseDate(strings.TrimSpace(record[cols.date]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[cols.amount]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q: %w", line, record[cols.amount], core.ErrValidation)
		}

		txnType := core.Credit
		if amount.IsNegative() {
			txnType = core.Debit
		}

		txn := core.Transaction{
			ID:          id,
			Date:        date,
			Amount:      amount.Abs(),
			Type:        txnType,
			Description: description,
		}
		if cols.currency != -1 {
			if c := strings.TrimSpace(record[cols.currency]); c != "" {
				txn.Currency = &c
			}
		}
		result.Transactions = append(result.Transactions, txn)
	}
	return result, nil
}
