// Package delivery renders invoice emails and posts new invoices to the
// configured outbound webhook.
package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"butter-invoicing/internal/core"
	"butter-invoicing/internal/logger"
)

// RenderEmail substitutes the bracket placeholders supported by the email
// template: [Contact Name], [Invoice Number] and [Total]. When the client
// has no contact person the client name stands in.
func RenderEmail(template string, inv *core.Invoice, client *core.Client) string {
	contact := client.Name
	if client.ContactName != nil && *client.ContactName != "" {
		contact = *client.ContactName
	}
	r := strings.NewReplacer(
		"[Contact Name]", contact,
		"[Invoice Number]", inv.InvoiceNumber,
		"[Total]", inv.Total.StringFixed(2),
	)
	return r.Replace(template)
}

// PDFRenderer produces the printable invoice document. Rendering happens
// out of process; the notifier only forwards the bytes.
type PDFRenderer interface {
	Render(ctx context.Context, inv *core.Invoice, client *core.Client) ([]byte, error)
}

type webhookPayload struct {
	Invoice     *core.Invoice `json:"invoice"`
	Client      *core.Client  `json:"client"`
	EmailBody   string        `json:"email_body"`
	IsRecurring bool          `json:"is_recurring"`
	PDFBase64   string        `json:"pdf_base64,omitempty"`
}

// WebhookNotifier posts created invoices to the webhook URL from settings.
// An empty webhook URL disables delivery without error.
type WebhookNotifier struct {
	settings core.SettingsService
	renderer PDFRenderer // optional
	client   *http.Client
	log      zerolog.Logger
}

func NewWebhookNotifier(settings core.SettingsService) *WebhookNotifier {
	return &WebhookNotifier{
		settings: settings,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      logger.WithComponent("delivery"),
	}
}

// WithRenderer attaches a PDF renderer. A render failure downgrades the
// delivery to body-only rather than failing it.
func (n *WebhookNotifier) WithRenderer(r PDFRenderer) *WebhookNotifier {
	n.renderer = r
	return n
}

func (n *WebhookNotifier) Notify(ctx context.Context, inv *core.Invoice, client *core.Client) error {
	settings, err := n.settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings.WebhookURL == "" {
		n.log.Debug().Str("invoice_number", inv.InvoiceNumber).Msg("no webhook configured, skipping delivery")
		return nil
	}

	payload := webhookPayload{
		Invoice:     inv,
		Client:      client,
		EmailBody:   RenderEmail(settings.EmailTemplate, inv, client),
		IsRecurring: inv.SourceProfileID != nil,
	}
	if n.renderer != nil {
		pdf, err := n.renderer.Render(ctx, inv, client)
		if err != nil {
			n.log.Warn().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("pdf render failed, delivering without attachment")
		} else {
			payload.PDFBase64 = base64.StdEncoding.EncodeToString(pdf)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %v: %w", err, core.ErrExternal)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d: %w", resp.StatusCode, core.ErrExternal)
	}

	n.log.Info().Str("invoice_number", inv.InvoiceNumber).Msg("invoice delivered")
	return nil
}
