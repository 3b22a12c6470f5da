package bank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butter-invoicing/internal/core"
)

func newWiseStub(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	accountLookups := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/profiles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id": 7, "type": "business"}]`))
	})
	mux.HandleFunc("/v1/transfers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("profile"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.URL.Query().Get("createdDateStart"))
		w.Write([]byte(`[
			{"id": 501, "targetAccount": 9, "sourceValue": 120.50, "sourceCurrency": "AUD",
			 "status": "outgoing_payment_sent", "created": "2024-03-15 10:30:45"},
			{"id": 502, "targetAccount": 9, "sourceValue": 80, "sourceCurrency": "AUD",
			 "status": "cancelled", "created": "2024-03-16 09:00:00"},
			{"id": 503, "targetAccount": 9, "sourceValue": 45.00, "sourceCurrency": "AUD",
			 "status": "outgoing_payment_sent", "created": "2024-03-20 12:00:00"}
		]`))
	})
	mux.HandleFunc("/v1/accounts/9", func(w http.ResponseWriter, r *http.Request) {
		accountLookups++
		w.Write([]byte(`{"id": 9, "accountHolderName": "Hosting Provider Pty Ltd"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &accountLookups
}

func TestFetchTransactions(t *testing.T) {
	srv, lookups := newWiseStub(t)
	client := NewWiseClientWith(srv.URL, "test-key")

	now := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	txns, err := client.FetchTransactions(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, txns, 2, "cancelled transfers are skipped")
	first := txns[0]
	assert.Equal(t, "501", first.ID)
	assert.Equal(t, "2024-03-15", first.Date)
	assert.Equal(t, core.Debit, first.Type)
	assert.Equal(t, "120.5", first.Amount.String())
	assert.Equal(t, "Transfer to Hosting Provider Pty Ltd", first.Description)
	require.NotNil(t, first.Currency)
	assert.Equal(t, "AUD", *first.Currency)

	assert.Equal(t, 1, *lookups, "recipient names are cached per account")
}

func TestFetchTransactionsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := NewWiseClientWith(srv.URL, "bad-key")
	_, err := client.FetchTransactions(context.Background(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrExternal))
}
