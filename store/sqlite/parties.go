/*
parties.go - Party (venue-rental sale) persistence

PURPOSE:
  CRUD and the range queries the API and dashboards need: by code, by
  status, by client, by event-date window. Party codes are unique; the
  collision maps to ErrDuplicateCode so the handler can retry with the
  next generated suffix.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/festeja/receivables-engine/receivables"
)

const partyColumns = `id, code, client_id, closing_date, event_date,
	total_value_cents, paid_cents, guest_count, theme, time_slot, status,
	notes, created_at, updated_at`

// CreateParty inserts a party and returns its id. The caller supplies the
// generated contract code; paid_cents starts at the party's PaidCents
// (zero for new sales, the imported sum for bootstrapped ones).
func (s *Store) CreateParty(ctx context.Context, p receivables.Party) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO parties
		(code, client_id, closing_date, event_date, total_value_cents,
		 paid_cents, guest_count, theme, time_slot, status, notes,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Code, p.ClientID, formatTime(p.ClosingDate), formatTime(p.EventDate),
		p.TotalValueCents, p.PaidCents, p.GuestCount, p.Theme, p.TimeSlot,
		string(p.Status), p.Notes, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ErrDuplicateCode
		}
		return 0, fmt.Errorf("failed to create party: %w", err)
	}
	return res.LastInsertId()
}

// PartyCodeExists reports whether a contract code is taken. Feeds the code
// generator's collision loop.
func (s *Store) PartyCodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM parties WHERE code = ?", code,
	).Scan(&count)
	return count > 0, err
}

// GetParty returns a party by id, or nil when missing.
func (s *Store) GetParty(ctx context.Context, id int64) (*receivables.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getParty(ctx, s.db, id)
}

func (s *Store) getParty(ctx context.Context, db execer, id int64) (*receivables.Party, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE id = ?", id)
	return scanPartyRow(row)
}

// GetPartyByCode returns a party by contract code, or nil when missing.
func (s *Store) GetPartyByCode(ctx context.Context, code string) (*receivables.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE code = ?", code)
	return scanPartyRow(row)
}

// ListParties returns every party, newest event first.
func (s *Store) ListParties(ctx context.Context) ([]receivables.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryParties(ctx,
		"SELECT "+partyColumns+" FROM parties ORDER BY event_date DESC")
}

// ListPartiesByStatus filters by lifecycle status.
func (s *Store) ListPartiesByStatus(ctx context.Context, status receivables.PartyStatus) ([]receivables.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryParties(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE status = ? ORDER BY event_date DESC",
		string(status))
}

// ListPartiesByClient returns a client's parties, newest event first.
func (s *Store) ListPartiesByClient(ctx context.Context, clientID int64) ([]receivables.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryParties(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE client_id = ? ORDER BY event_date DESC",
		clientID)
}

// ListPartiesByEventRange returns parties whose event falls in [from, to].
func (s *Store) ListPartiesByEventRange(ctx context.Context, from, to time.Time) ([]receivables.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryParties(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE event_date >= ? AND event_date <= ? ORDER BY event_date ASC",
		formatTime(from), formatTime(to))
}

// UpdateParty overwrites the mutable fields of a party. paid_cents is NOT
// touched here - only payment writes may move it.
func (s *Store) UpdateParty(ctx context.Context, p receivables.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE parties SET
			code = ?, client_id = ?, closing_date = ?, event_date = ?,
			total_value_cents = ?, guest_count = ?, theme = ?, time_slot = ?,
			status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		p.Code, p.ClientID, formatTime(p.ClosingDate), formatTime(p.EventDate),
		p.TotalValueCents, p.GuestCount, p.Theme, p.TimeSlot, string(p.Status),
		p.Notes, formatTime(time.Now()), p.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to update party: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteParty removes a party and its payments atomically.
func (s *Store) DeleteParty(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE party_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete party payments: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM parties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// SCANNING
// =============================================================================

func (s *Store) queryParties(ctx context.Context, query string, args ...any) ([]receivables.Party, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer rows.Close()

	var parties []receivables.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParty(r rowScanner) (receivables.Party, error) {
	var (
		p                    receivables.Party
		closing, event       string
		status               string
		createdAt, updatedAt string
	)
	err := r.Scan(
		&p.ID, &p.Code, &p.ClientID, &closing, &event,
		&p.TotalValueCents, &p.PaidCents, &p.GuestCount, &p.Theme,
		&p.TimeSlot, &status, &p.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return p, fmt.Errorf("failed to scan party: %w", err)
	}
	p.ClosingDate = parseTime(closing)
	p.EventDate = parseTime(event)
	p.Status = receivables.PartyStatus(status)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func scanPartyRow(row *sql.Row) (*receivables.Party, error) {
	p, err := scanParty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
