/*
costs.go - Operating-cost persistence

PURPOSE:
  Flat CRUD over the two cost tables. The interesting arithmetic (percent
  shares, margins) lives in the crm package; this file only stores rows.
*/
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/festeja/receivables-engine/crm"
)

// =============================================================================
// VARIABLE COSTS
// =============================================================================

// CreateVariableCost inserts a per-party cost and returns its id.
func (s *Store) CreateVariableCost(ctx context.Context, c crm.VariableCost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO variable_costs
		(description, value_cents, percent, active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Description, c.ValueCents, c.Percent, boolToInt(c.Active), c.Order, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create variable cost: %w", err)
	}
	return res.LastInsertId()
}

// ListVariableCosts returns variable costs in display order; activeOnly
// filters out retired entries.
func (s *Store) ListVariableCosts(ctx context.Context, activeOnly bool) ([]crm.VariableCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, description, value_cents, percent, active, sort_order, created_at, updated_at FROM variable_costs"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query variable costs: %w", err)
	}
	defer rows.Close()

	var costs []crm.VariableCost
	for rows.Next() {
		var (
			c                    crm.VariableCost
			active               int
			createdAt, updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.Description, &c.ValueCents, &c.Percent,
			&active, &c.Order, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variable cost: %w", err)
		}
		c.Active = active != 0
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// UpdateVariableCost overwrites a variable cost.
func (s *Store) UpdateVariableCost(ctx context.Context, c crm.VariableCost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE variable_costs SET
			description = ?, value_cents = ?, percent = ?, active = ?,
			sort_order = ?, updated_at = ?
		WHERE id = ?`,
		c.Description, c.ValueCents, c.Percent, boolToInt(c.Active), c.Order,
		formatTime(time.Now()), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update variable cost: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteVariableCost removes a variable cost.
func (s *Store) DeleteVariableCost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM variable_costs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete variable cost: %w", err)
	}
	return requireRowAffected(res)
}

// =============================================================================
// FIXED COSTS
// =============================================================================

// CreateFixedCost inserts a monthly overhead entry and returns its id.
func (s *Store) CreateFixedCost(ctx context.Context, c crm.FixedCost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_costs
		(description, value_cents, reference_month, active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Description, c.ValueCents, formatTime(c.ReferenceMonth),
		boolToInt(c.Active), c.Order, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create fixed cost: %w", err)
	}
	return res.LastInsertId()
}

// ListFixedCosts returns fixed costs in display order; activeOnly filters
// out retired entries.
func (s *Store) ListFixedCosts(ctx context.Context, activeOnly bool) ([]crm.FixedCost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, description, value_cents, reference_month, active, sort_order, created_at, updated_at FROM fixed_costs"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed costs: %w", err)
	}
	defer rows.Close()

	var costs []crm.FixedCost
	for rows.Next() {
		var (
			c                    crm.FixedCost
			refMonth             string
			active               int
			createdAt, updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.Description, &c.ValueCents, &refMonth,
			&active, &c.Order, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fixed cost: %w", err)
		}
		c.ReferenceMonth = parseTime(refMonth)
		c.Active = active != 0
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// UpdateFixedCost overwrites a fixed cost.
func (s *Store) UpdateFixedCost(ctx context.Context, c crm.FixedCost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE fixed_costs SET
			description = ?, value_cents = ?, reference_month = ?, active = ?,
			sort_order = ?, updated_at = ?
		WHERE id = ?`,
		c.Description, c.ValueCents, formatTime(c.ReferenceMonth),
		boolToInt(c.Active), c.Order, formatTime(time.Now()), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fixed cost: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteFixedCost removes a fixed cost.
func (s *Store) DeleteFixedCost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM fixed_costs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete fixed cost: %w", err)
	}
	return requireRowAffected(res)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
