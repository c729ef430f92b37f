/*
Package receivables computes payment health and cash-flow projections for
venue-rental contracts.

PURPOSE:
  A party (venue-rental sale) has a total contracted value, a closing date,
  an event date, and a stream of partial payments. This package answers two
  questions from that data alone:
  - Is each open contract keeping pace with its payment schedule?
  - How much money should arrive in each of the next 12 months?

KEY CONCEPTS IN THIS FILE (types.go):
  - Party: A single venue-rental sale (external record, read-only here)
  - Payment: A partial payment against a party
  - Health: The derived payment-health view of one party
  - Bucket: One month of the 12-month forward projection
  - Stats: Aggregate sales figures across all parties

DESIGN PRINCIPLES:
  1. Purity: Every computation is a function of (inputs, now). No I/O,
     no shared state, no caching. Health is recomputed on every read.
  2. Integer money: All monetary values are int64 cents. Rounding happens
     only through explicit ceil/floor/max steps in the pacing rules.
  3. Injected clock: "now" is always a parameter so callers can pin a single
     instant across classifier and projector (and tests can freeze time).

SEE ALSO:
  - pacing.go: PacingPolicy constants and the day-count arithmetic
  - classify.go: Per-party health classification
  - projection.go: 12-month cash-flow distribution
  - stats.go: Aggregate sales statistics
*/
package receivables

import (
	"time"
)

// =============================================================================
// PARTY - A venue-rental sale (external record store entity)
// =============================================================================

// PartyStatus is the lifecycle state of the sale itself, not of its payments.
type PartyStatus string

const (
	PartyScheduled PartyStatus = "agendada"
	PartyPerformed PartyStatus = "realizada"
	PartyCanceled  PartyStatus = "cancelada"
)

// Party is a single venue-rental sale. The record store owns it; this
// package only reads TotalValueCents, ClosingDate and EventDate.
type Party struct {
	ID       int64
	Code     string
	ClientID int64

	// Contract value in cents. PaidCents is the store-maintained running
	// sum of payments; derived balances here always recompute from the
	// payment list instead of trusting it.
	TotalValueCents int64
	PaidCents       int64

	ClosingDate time.Time
	EventDate   time.Time

	GuestCount int
	Theme      string
	TimeSlot   string
	Status     PartyStatus
	Notes      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// PAYMENT - A partial payment against a party
// =============================================================================

// Payment records one partial payment. Only ValueCents and PaidAt matter to
// the computations here; insertion order is irrelevant.
type Payment struct {
	ID      int64
	PartyID int64

	ValueCents int64
	PaidAt     time.Time

	Method string
	Notes  string

	CreatedAt time.Time
}

// TotalPaidCents sums the payment values. Order-independent.
func TotalPaidCents(payments []Payment) int64 {
	var total int64
	for _, p := range payments {
		total += p.ValueCents
	}
	return total
}

// BalanceCents is the outstanding amount: contract value minus payments.
// Negative means overpaid; callers treat <= 0 as settled.
func BalanceCents(party Party, payments []Payment) int64 {
	return party.TotalValueCents - TotalPaidCents(payments)
}

// =============================================================================
// HEALTH - Derived payment-health view of one party
// =============================================================================

// Status is the payment-health classification. Values are stable wire
// identifiers (they appear in API responses and dashboards).
type Status string

const (
	// StatusQuitado: fully paid off. Wins over every time-based rule.
	StatusQuitado Status = "quitado"

	// StatusNaoQuitado: the payoff deadline has passed and money is still owed.
	StatusNaoQuitado Status = "nao_quitado"

	// StatusAlertaQuitacao: the payoff window is imminent (10 days or less
	// to the event) but the deadline has not passed yet.
	StatusAlertaQuitacao Status = "alerta_quitacao"

	// StatusEmDia: cumulative payments meet the minimum monthly pace.
	StatusEmDia Status = "em_dia"

	// StatusAtrasado: behind the minimum monthly pace.
	StatusAtrasado Status = "atrasado"
)

// Health is the full derived view returned by Classify. All intermediate
// values are exposed so callers can aggregate (e.g. total receivable) without
// recomputing them.
type Health struct {
	PartyID int64
	Status  Status

	TotalPaidCents int64
	BalanceCents   int64

	// MinimumExpectedCents is the cumulative minimum the party should have
	// paid by now to be considered on pace.
	MinimumExpectedCents int64

	// MonthsElapsed since the closing date, in fixed 30-day months.
	// Negative when the closing date is in the future.
	MonthsElapsed int

	// DaysToEvent until the event date. Negative once the event has passed.
	DaysToEvent int

	// PayoffDeadline is EventDate minus the payoff window.
	PayoffDeadline time.Time
}

// =============================================================================
// BUCKET - One month of the forward projection
// =============================================================================

// Bucket holds the projected and realized receipts for one calendar month.
// The projector always returns exactly 12, chronological, starting at the
// current month.
type Bucket struct {
	Year  int
	Month time.Month

	// ExpectedCents: outstanding balances distributed over the months
	// remaining before each party's payoff deadline.
	ExpectedCents int64

	// RealizedCents: payments dated now or later that fall in this month.
	RealizedCents int64

	// ContractsDue: parties whose payoff deadline falls in this month.
	ContractsDue int
}

// Label formats the bucket month as "2006-01" for keys and display.
func (b Bucket) Label() string {
	return time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
