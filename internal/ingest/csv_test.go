package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butter-invoicing/internal/core"
)

const sampleCSV = `TransferWise ID,Date,Amount,Currency,Description
TRANSFER-1001,15-03-2024,2500.00,AUD,Payment from Acme Corp
TRANSFER-1002,16-03-2024,-89.99,AUD,Adobe subscription
BALANCE-55,16-03-2024,100.00,AUD,Balance top up
TRANSFER-1003,17-03-2024,-500.00,AUD,Converted 500 AUD to USD
`

func TestParseWiseCSV(t *testing.T) {
	result, err := ParseWiseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, 2, result.Filtered)

	credit := result.Transactions[0]
	assert.Equal(t, "TRANSFER-1001", credit.ID)
	assert.Equal(t, "2024-03-15", credit.Date)
	assert.Equal(t, core.Credit, credit.Type)
	assert.Equal(t, "2500", credit.Amount.String())
	require.NotNil(t, credit.Currency)
	assert.Equal(t, "AUD", *credit.Currency)

	debit := result.Transactions[1]
	assert.Equal(t, core.Debit, debit.Type)
	assert.Equal(t, "89.99", debit.Amount.String())
	assert.Equal(t, "Adobe subscription", debit.Description)
}

func TestParseWiseCSVISODatesAndNoCurrency(t *testing.T) {
	in := "ID,Date,Amount,Description\nT-1,2024-07-01,10.50,Coffee\n"
	result, err := ParseWiseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "2024-07-01", result.Transactions[0].Date)
	assert.Nil(t, result.Transactions[0].Currency)
}

func TestParseWiseCSVMissingColumn(t *testing.T) {
	in := "ID,Date,Description\nT-1,2024-07-01,Coffee\n"
	_, err := ParseWiseCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), "amount")
}

func TestParseWiseCSVBadRowFailsWholeFile(t *testing.T) {
	in := "ID,Date,Amount,Description\nT-1,2024-07-01,10.50,Coffee\nT-2,2024-07-02,not-a-number,Tea\n"
	_, err := ParseWiseCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseWiseCSVInternalTransferMarkers(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		description string
		internal    bool
	}{
		{"balance id prefix", "BALANCE-1", "Anything", true},
		{"conversion", "T-1", "Converted 100 AUD to USD", true},
		{"top up", "T-2", "Topped up balance", true},
		{"cashback", "T-3", "Balance cashback", true},
		{"regular payment", "T-4", "Payment from client", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.internal, isInternalTransfer(tt.id, tt.description))
		})
	}
}
