package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butter-invoicing/internal/core"
)

func strPtr(s string) *string { return &s }

func TestRenderEmail(t *testing.T) {
	inv := &core.Invoice{InvoiceNumber: "INV-ACME-0003", Total: decimal.RequireFromString("1650.00")}
	template := "Hi [Contact Name],\n\nInvoice [Invoice Number] for $[Total] is attached.\n\nButter Invoicing Team"

	t.Run("with contact name", func(t *testing.T) {
		client := &core.Client{Name: "Acme Corp", ContactName: strPtr("Jordan Lee")}
		body := RenderEmail(template, inv, client)
		assert.Contains(t, body, "Hi Jordan Lee,")
		assert.Contains(t, body, "Invoice INV-ACME-0003 for $1650.00")
	})

	t.Run("falls back to client name", func(t *testing.T) {
		client := &core.Client{Name: "Acme Corp"}
		body := RenderEmail(template, inv, client)
		assert.Contains(t, body, "Hi Acme Corp,")
	})

	t.Run("template without placeholders passes through", func(t *testing.T) {
		client := &core.Client{Name: "Acme Corp"}
		assert.Equal(t, "plain text", RenderEmail("plain text", inv, client))
	})
}

type stubSettings struct {
	settings core.Settings
}

func (s *stubSettings) GetSettings(ctx context.Context) (*core.Settings, error) {
	return &s.settings, nil
}

func (s *stubSettings) UpdateSettings(ctx context.Context, input core.SettingsInput) (*core.Settings, error) {
	return &s.settings, nil
}

func TestWebhookNotifier(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	profileID := "profile-1"
	inv := &core.Invoice{
		InvoiceNumber:   "INV-ACME-0001",
		Total:           decimal.RequireFromString("1650.00"),
		SourceProfileID: &profileID,
		CreatedAt:       time.Now(),
	}
	client := &core.Client{Name: "Acme Corp"}

	notifier := NewWebhookNotifier(&stubSettings{settings: core.Settings{
		WebhookURL:    srv.URL,
		EmailTemplate: "Invoice [Invoice Number] for $[Total]",
	}})
	require.NoError(t, notifier.Notify(context.Background(), inv, client))

	assert.Equal(t, true, received["is_recurring"])
	assert.Equal(t, "Invoice INV-ACME-0001 for $1650.00", received["email_body"])
	require.NotNil(t, received["invoice"])
}

func TestWebhookNotifierDisabledWithoutURL(t *testing.T) {
	notifier := NewWebhookNotifier(&stubSettings{})
	inv := &core.Invoice{InvoiceNumber: "INV-ACME-0001", Total: decimal.Zero}
	err := notifier.Notify(context.Background(), inv, &core.Client{Name: "Acme Corp"})
	assert.NoError(t, err, "missing webhook URL skips delivery silently")
}

func TestWebhookNotifierUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	notifier := NewWebhookNotifier(&stubSettings{settings: core.Settings{WebhookURL: srv.URL}})
	inv := &core.Invoice{InvoiceNumber: "INV-ACME-0001", Total: decimal.Zero}
	err := notifier.Notify(context.Background(), inv, &core.Client{Name: "Acme Corp"})
	assert.ErrorIs(t, err, core.ErrExternal)
}
