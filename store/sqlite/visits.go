/*
visits.go - Venue-tour booking persistence

PURPOSE:
  Visit bookings come straight from the public site, so creation enforces
  the one business rule the venue cares about: one thing at a time. A slot
  is refused when an open visit is already booked on it or a non-canceled
  party occupies the venue at that instant.
*/
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/festeja/receivables-engine/crm"
	"github.com/festeja/receivables-engine/receivables"
)

const visitColumns = `id, client_name, client_phone, scheduled_at,
	event_type, status, notes, created_at, updated_at`

// CreateVisit books a venue tour after checking the slot against open
// visits and non-canceled parties. Returns ErrSlotTaken on conflict.
func (s *Store) CreateVisit(ctx context.Context, v crm.Visit) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := formatTime(v.ScheduledAt)

	var visitClash int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM visits WHERE scheduled_at = ? AND status = ?",
		at, string(crm.VisitScheduled),
	).Scan(&visitClash); err != nil {
		return 0, fmt.Errorf("failed to check visit conflicts: %w", err)
	}
	if visitClash > 0 {
		return 0, ErrSlotTaken
	}

	var partyClash int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM parties WHERE event_date = ? AND status != ?",
		at, string(receivables.PartyCanceled),
	).Scan(&partyClash); err != nil {
		return 0, fmt.Errorf("failed to check party conflicts: %w", err)
	}
	if partyClash > 0 {
		return 0, ErrSlotTaken
	}

	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO visits
		(client_name, client_phone, scheduled_at, event_type, status, notes,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ClientName, v.ClientPhone, at, v.EventType,
		string(crm.VisitScheduled), v.Notes, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create visit: %w", err)
	}
	return res.LastInsertId()
}

// ListVisits returns every visit, newest booking first.
func (s *Store) ListVisits(ctx context.Context) ([]crm.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+visitColumns+" FROM visits ORDER BY scheduled_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []crm.Visit
	for rows.Next() {
		var (
			v                    crm.Visit
			at, status           string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&v.ID, &v.ClientName, &v.ClientPhone, &at,
			&v.EventType, &status, &v.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.ScheduledAt = parseTime(at)
		v.Status = crm.VisitStatus(status)
		v.CreatedAt = parseTime(createdAt)
		v.UpdatedAt = parseTime(updatedAt)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// ListBusySlots returns the occupied instants inside [from, to] for the
// public calendar's availability view: scheduled visits plus the event
// dates of non-canceled parties, the same two sources CreateVisit checks.
func (s *Store) ListBusySlots(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT scheduled_at AS at FROM visits
		WHERE scheduled_at >= ? AND scheduled_at <= ? AND status = ?
		UNION
		SELECT event_date AS at FROM parties
		WHERE event_date >= ? AND event_date <= ? AND status != ?
		ORDER BY at ASC`,
		formatTime(from), formatTime(to), string(crm.VisitScheduled),
		formatTime(from), formatTime(to), string(receivables.PartyCanceled),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query busy slots: %w", err)
	}
	defer rows.Close()

	var slots []time.Time
	for rows.Next() {
		var at string
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, parseTime(at))
	}
	return slots, rows.Err()
}

// UpdateVisitStatus moves a booking through its lifecycle.
func (s *Store) UpdateVisitStatus(ctx context.Context, id int64, status crm.VisitStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE visits SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update visit status: %w", err)
	}
	return requireRowAffected(res)
}
