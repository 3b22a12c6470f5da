package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsInput carries partial settings updates; nil fields are untouched.
type SettingsInput struct {
	WebhookURL    *string `json:"webhook_url"`
	EmailTemplate *string `json:"email_template"`
}

type SettingsService interface {
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, input SettingsInput) (*Settings, error)
}

type settingsService struct {
	pool *pgxpool.Pool
}

func NewSettingsService(pool *pgxpool.Pool) SettingsService {
	return &settingsService{pool: pool}
}

// The settings table holds exactly one row, seeded by the schema migration.
func (s *settingsService) GetSettings(ctx context.Context) (*Settings, error) {
	out := &Settings{}
	err := s.pool.QueryRow(ctx,
		"SELECT webhook_url, email_template, updated_at FROM settings WHERE id = 1",
	).Scan(&out.WebhookURL, &out.EmailTemplate, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return out, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, input SettingsInput) (*Settings, error) {
	out := &Settings{}
	err := s.pool.QueryRow(ctx, `
		UPDATE settings
		SET webhook_url    = COALESCE($1, webhook_url),
		    email_template = COALESCE($2, email_template),
		    updated_at     = NOW()
		WHERE id = 1
		RETURNING webhook_url, email_template, updated_at
	`, input.WebhookURL, input.EmailTemplate).Scan(&out.WebhookURL, &out.EmailTemplate, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return out, nil
}
