// Package bank pulls outgoing transfers from the Wise API and normalizes
// them into transactions.
package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"butter-invoicing/internal/core"
	"butter-invoicing/internal/logger"
)

const (
	defaultBaseURL = "https://api.transferwise.com"
	// Transfers older than this are assumed to be already imported.
	lookbackDays  = 90
	transferLimit = "100"
)

type WiseClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewWiseClient reads WISE_API_KEY and the optional WISE_API_URL override
// from the environment.
func NewWiseClient() (*WiseClient, error) {
	apiKey := os.Getenv("WISE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("WISE_API_KEY is not set: %w", core.ErrValidation)
	}
	baseURL := os.Getenv("WISE_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return NewWiseClientWith(baseURL, apiKey), nil
}

func NewWiseClientWith(baseURL, apiKey string) *WiseClient {
	return &WiseClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger.WithComponent("wise"),
	}
}

type wiseProfile struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type wiseTransfer struct {
	ID             int64           `json:"id"`
	TargetAccount  int64           `json:"targetAccount"`
	SourceValue    decimal.Decimal `json:"sourceValue"`
	SourceCurrency string          `json:"sourceCurrency"`
	Status         string          `json:"status"`
	Created        string          `json:"created"`
}

type wiseAccount struct {
	ID                int64  `json:"id"`
	AccountHolderName string `json:"accountHolderName"`
}

// FetchTransactions pulls transfers created in the last 90 days across all
// profiles. Wise transfers are always outgoing, so every record is a Debit
// described as "Transfer to <recipient>".
func (c *WiseClient) FetchTransactions(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	var profiles []wiseProfile
	if err := c.get(ctx, "/v2/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	c.log.Debug().Int("profiles", len(profiles)).Msg("fetched profiles")

	since := now.AddDate(0, 0, -lookbackDays)
	recipients := map[int64]string{}

	var txns []core.Transaction
	for _, profile := range profiles {
		query := url.Values{
			"profile":          {strconv.FormatInt(profile.ID, 10)},
			"limit":            {transferLimit},
			"createdDateStart": {since.Format(core.DateLayout)},
		}
		var transfers []wiseTransfer
		if err := c.get(ctx, "/v1/transfers", query, &transfers); err != nil {
			return nil, err
		}

		for _, tr := range transfers {
			if tr.Status == "cancelled" {
				continue
			}
			date, err := parseCreated(tr.Created)
			if err != nil {
				return nil, fmt.Errorf("transfer %d: %w", tr.ID, err)
			}
			recipient, err := c.recipientName(ctx, tr.TargetAccount, recipients)
			if err != nil {
				return nil, err
			}
			currency := tr.SourceCurrency
			txns = append(txns, core.Transaction{
				ID:          strconv.FormatInt(tr.ID, 10),
				Date:        date,
				Amount:      tr.SourceValue.Abs(),
				Type:        core.Debit,
				Description: "Transfer to " + recipient,
				Currency:    &currency,
			})
		}
	}
	return txns, nil
}

// Wise reports timestamps like "2024-03-15 10:30:45".
func parseCreated(raw string) (string, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, core.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(core.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized created timestamp %q: %w", raw, core.ErrExternal)
}

func (c *WiseClient) recipientName(ctx context.Context, accountID int64, cache map[int64]string) (string, error) {
	if name, ok := cache[accountID]; ok {
		return name, nil
	}
	var account wiseAccount
	if err := c.get(ctx, "/v1/accounts/"+strconv.FormatInt(accountID, 10), nil, &account); err != nil {
		return "", err
	}
	name := account.AccountHolderName
	if name == "" {
		name = "Unknown recipient"
	}
	cache[accountID] = name
	return name, nil
}

func (c *WiseClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("wise request %s failed: %v: %w", path, err, core.ErrExternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wise request %s returned %d: %s: %w", path, resp.StatusCode, body, core.ErrExternal)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode wise response for %s: %w", path, core.ErrExternal)
	}
	return nil
}
