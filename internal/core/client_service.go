package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientInput holds the fields for creating or updating a client.
type ClientInput struct {
	Name        string
	ContactName string
	Email       string
}

// ClientService provides client master data operations. Clients are
// immutable once referenced by invoices except for contact fields, and
// deletion never cascades to invoices.
type ClientService interface {
	CreateClient(ctx context.Context, input ClientInput) (*Client, error)
	GetClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id string) (*Client, error)

	// UpdateClientContact updates the mutable contact fields only.
	UpdateClientContact(ctx context.Context, id string, input ClientInput) (*Client, error)

	// DeleteClient removes a client. Invoices keep their clientId and render
	// the client as "Unknown".
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	pool *pgxpool.Pool
}

// NewClientService constructs a ClientService backed by PostgreSQL.
func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *clientService) CreateClient(ctx context.Context, input ClientInput) (*Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("client name is required: %w", ErrValidation)
	}

	c := &Client{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO clients (name, contact_name, email)
		VALUES ($1, $2, $3)
		RETURNING id, name, contact_name, email, created_at
	`, input.Name, toPtr(input.ContactName), toPtr(input.Email)).Scan(
		&c.ID, &c.Name, &c.ContactName, &c.Email, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func (s *clientService) GetClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, contact_name, email, created_at
		FROM clients
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.ContactName, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*Client, error) {
	c := &Client{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, contact_name, email, created_at
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.ContactName, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch client %s: %w", id, err)
	}
	return c, nil
}

func (s *clientService) UpdateClientContact(ctx context.Context, id string, input ClientInput) (*Client, error) {
	c := &Client{}
	err := s.pool.QueryRow(ctx, `
		UPDATE clients
		SET contact_name = $1, email = $2
		WHERE id = $3
		RETURNING id, name, contact_name, email, created_at
	`, toPtr(input.ContactName), toPtr(input.Email), id).Scan(
		&c.ID, &c.Name, &c.ContactName, &c.Email, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update client %s: %w", id, err)
	}
	return c, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete client %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return nil
}
