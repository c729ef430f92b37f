/*
payments.go - Payment persistence with the paid_cents invariant

PURPOSE:
  Payments are the one place where two tables must move together: every
  payment insert or delete adjusts the owning party's denormalized
  paid_cents inside the same SQL transaction. A crash between the two
  writes can therefore never leave the running sum out of step with the
  payment rows.

BOUNDARY VALIDATION:
  Non-positive payment values are rejected here (ErrNonPositivePayment).
  The computation layer treats payment values as trusted positive integers
  and never re-checks them.
*/
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/festeja/receivables-engine/receivables"
)

const paymentColumns = `id, party_id, value_cents, paid_at, method, notes, created_at`

// CreatePayment records a payment and bumps the party's paid_cents
// atomically. Returns ErrNotFound when the party doesn't exist.
func (s *Store) CreatePayment(ctx context.Context, p receivables.Payment) (int64, error) {
	if p.ValueCents <= 0 {
		return 0, ErrNonPositivePayment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE parties SET paid_cents = paid_cents + ?, updated_at = ? WHERE id = ?",
		p.ValueCents, formatTime(time.Now()), p.PartyID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update party paid sum: %w", err)
	}
	if err := requireRowAffected(res); err != nil {
		return 0, err
	}

	ins, err := tx.ExecContext(ctx, `
		INSERT INTO payments (party_id, value_cents, paid_at, method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.PartyID, p.ValueCents, formatTime(p.PaidAt), p.Method, p.Notes,
		formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// DeletePayment removes a payment and subtracts its value from the party's
// paid_cents, flooring at zero, atomically.
func (s *Store) DeletePayment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var partyID, valueCents int64
	err = tx.QueryRowContext(ctx,
		"SELECT party_id, value_cents FROM payments WHERE id = ?", id,
	).Scan(&partyID, &valueCents)
	if err != nil {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE parties SET paid_cents = MAX(0, paid_cents - ?), updated_at = ? WHERE id = ?",
		valueCents, formatTime(time.Now()), partyID,
	); err != nil {
		return fmt.Errorf("failed to update party paid sum: %w", err)
	}
	return tx.Commit()
}

// ListPaymentsByParty returns one party's payments, oldest first.
func (s *Store) ListPaymentsByParty(ctx context.Context, partyID int64) ([]receivables.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE party_id = ? ORDER BY paid_at ASC",
		partyID)
}

// ListAllPayments returns every payment, oldest first.
func (s *Store) ListAllPayments(ctx context.Context) ([]receivables.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM payments ORDER BY paid_at ASC")
}

// PaymentsByParty loads every payment grouped by party in one query. This
// is what feeds the projector: all parties, all payments, one pass.
func (s *Store) PaymentsByParty(ctx context.Context) (map[int64][]receivables.Payment, error) {
	payments, err := s.ListAllPayments(ctx)
	if err != nil {
		return nil, err
	}
	byParty := make(map[int64][]receivables.Payment)
	for _, p := range payments {
		byParty[p.PartyID] = append(byParty[p.PartyID], p)
	}
	return byParty, nil
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]receivables.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []receivables.Payment
	for rows.Next() {
		var (
			p                 receivables.Payment
			paidAt, createdAt string
		)
		if err := rows.Scan(&p.ID, &p.PartyID, &p.ValueCents, &paidAt,
			&p.Method, &p.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PaidAt = parseTime(paidAt)
		p.CreatedAt = parseTime(createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
