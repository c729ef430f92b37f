/*
Package crm holds the sales-side domain: clients with their funnel position,
visit bookings, operating costs, and the contract-code rules.

PURPOSE:
  Everything upstream of a signed contract lives here. Once a lead closes,
  a Party is created (see the receivables package) and the money tracking
  takes over; until then the client moves through the funnel and books
  venue visits.

KEY CONCEPTS:
  - Client: A lead or customer with a funnel status and potential value
  - Visit: A booked venue tour, publicly schedulable, conflict-checked
  - FixedCost / VariableCost: Operating costs feeding margin calculations

SEE ALSO:
  - code.go: Contract code generation
  - costs.go: Variable-cost and profit-margin arithmetic
*/
package crm

import "time"

// =============================================================================
// CLIENT - Lead / customer with funnel position
// =============================================================================

// FunnelStatus is the sales-funnel stage of a client.
type FunnelStatus string

const (
	FunnelNew       FunnelStatus = "novo"
	FunnelContacted FunnelStatus = "contato"
	FunnelVisit     FunnelStatus = "visita"
	FunnelProposal  FunnelStatus = "proposta"
	FunnelClosing   FunnelStatus = "fechamento"
	FunnelLost      FunnelStatus = "perdido"
)

// ValidFunnelStatus reports whether s is one of the known funnel stages.
func ValidFunnelStatus(s FunnelStatus) bool {
	switch s {
	case FunnelNew, FunnelContacted, FunnelVisit, FunnelProposal, FunnelClosing, FunnelLost:
		return true
	}
	return false
}

// Client is a lead or customer. PotentialValueCents is the estimated deal
// size used for funnel forecasting, not a contracted amount.
type Client struct {
	ID    int64
	Name  string
	Phone string
	Email string

	Origin              string // acquisition channel, defaults to "organico"
	FunnelStatus        FunnelStatus
	PotentialValueCents int64
	Notes               string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// VISIT - Publicly bookable venue tour
// =============================================================================

type VisitStatus string

const (
	VisitScheduled VisitStatus = "agendada"
	VisitDone      VisitStatus = "realizada"
	VisitCanceled  VisitStatus = "cancelada"
	VisitNoShow    VisitStatus = "noshow"
)

// ValidVisitStatus reports whether s is a known visit status.
func ValidVisitStatus(s VisitStatus) bool {
	switch s {
	case VisitScheduled, VisitDone, VisitCanceled, VisitNoShow:
		return true
	}
	return false
}

// Visit is a booked venue tour. Bookings come from the public site, so the
// client may not exist yet - only a name and phone are captured.
type Visit struct {
	ID          int64
	ClientName  string
	ClientPhone string
	ScheduledAt time.Time
	EventType   string
	Status      VisitStatus
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// COSTS - Operating costs for margin calculations
// =============================================================================

// VariableCost is a per-party cost: either a flat cents value or a
// percentage of the party's contract value (Percent 1-100). When Percent is
// zero the flat value applies.
type VariableCost struct {
	ID          int64
	Description string
	ValueCents  int64
	Percent     int
	Active      bool
	Order       int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FixedCost is a monthly operating cost tied to a reference month.
type FixedCost struct {
	ID             int64
	Description    string
	ValueCents     int64
	ReferenceMonth time.Time
	Active         bool
	Order          int

	CreatedAt time.Time
	UpdatedAt time.Time
}
