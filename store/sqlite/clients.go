/*
clients.go - Client (lead/customer) persistence

PURPOSE:
  CRUD over the client book plus funnel-board moves and free-text search.
  Deleting a client is refused while parties reference it - contracts keep
  their history even when a relationship sours.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/festeja/receivables-engine/crm"
)

const clientColumns = `id, name, phone, email, origin, funnel_status,
	potential_value_cents, notes, created_at, updated_at`

// CreateClient inserts a client and returns its id. Empty origin and
// funnel status fall back to the defaults.
func (s *Store) CreateClient(ctx context.Context, c crm.Client) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Origin == "" {
		c.Origin = "organico"
	}
	if c.FunnelStatus == "" {
		c.FunnelStatus = crm.FunnelNew
	}

	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients
		(name, phone, email, origin, funnel_status, potential_value_cents,
		 notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Origin, string(c.FunnelStatus),
		c.PotentialValueCents, c.Notes, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create client: %w", err)
	}
	return res.LastInsertId()
}

// GetClient returns a client by id, or nil when missing.
func (s *Store) GetClient(ctx context.Context, id int64) (*crm.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id)

	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListClients returns every client, alphabetically.
func (s *Store) ListClients(ctx context.Context) ([]crm.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryClients(ctx,
		"SELECT "+clientColumns+" FROM clients ORDER BY name ASC")
}

// SearchClients matches the term against name, phone and email. An empty
// term lists everyone.
func (s *Store) SearchClients(ctx context.Context, term string) ([]crm.Client, error) {
	if term == "" {
		return s.ListClients(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	like := "%" + term + "%"
	return s.queryClients(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE name LIKE ? OR phone LIKE ? OR email LIKE ?
		ORDER BY name ASC`,
		like, like, like)
}

// UpdateClient overwrites the mutable fields of a client.
func (s *Store) UpdateClient(ctx context.Context, c crm.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET
			name = ?, phone = ?, email = ?, origin = ?, funnel_status = ?,
			potential_value_cents = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Email, c.Origin, string(c.FunnelStatus),
		c.PotentialValueCents, c.Notes, formatTime(time.Now()), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return requireRowAffected(res)
}

// UpdateClientFunnel moves a client on the funnel board without touching
// the rest of the record.
func (s *Store) UpdateClientFunnel(ctx context.Context, id int64, status crm.FunnelStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE clients SET funnel_status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update funnel status: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteClient removes a client. Refused with ErrClientHasParties while
// any party still references it.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parties int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM parties WHERE client_id = ?", id,
	).Scan(&parties); err != nil {
		return fmt.Errorf("failed to count client parties: %w", err)
	}
	if parties > 0 {
		return ErrClientHasParties
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return requireRowAffected(res)
}

func (s *Store) queryClients(ctx context.Context, query string, args ...any) ([]crm.Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []crm.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func scanClient(r rowScanner) (crm.Client, error) {
	var (
		c                    crm.Client
		funnel               string
		createdAt, updatedAt string
	)
	err := r.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Origin, &funnel,
		&c.PotentialValueCents, &c.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("failed to scan client: %w", err)
	}
	c.FunnelStatus = crm.FunnelStatus(funnel)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}
