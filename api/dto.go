/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  All request and response money fields are integer cents, same unit as
  storage. Derived display figures (percent paid, average ticket, margin
  percent) are decimal strings computed at this boundary only.

DATES:
  Dates are "YYYY-MM-DD"; instants (payment timestamps, visit slots) are
  RFC 3339.

SEE ALSO:
  - handlers.go: Party and payment handlers using these types
  - crm_handlers.go: Client, visit and cost handlers
  - tracking.go: Health and projection handlers
*/
package api

// =============================================================================
// PARTIES
// =============================================================================

// PartyDTO represents a venue-rental sale in API responses.
type PartyDTO struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	ClientID int64  `json:"client_id"`

	TotalValueCents int64 `json:"total_value_cents"`
	PaidCents       int64 `json:"paid_cents"`

	ClosingDate string `json:"closing_date"`
	EventDate   string `json:"event_date"`

	GuestCount int    `json:"guest_count"`
	Theme      string `json:"theme,omitempty"`
	TimeSlot   string `json:"time_slot,omitempty"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
}

// CreatePartyRequest is the request to register a sale. The contract code
// is generated server-side from the closing date and client name.
type CreatePartyRequest struct {
	ClientID        int64  `json:"client_id"`
	TotalValueCents int64  `json:"total_value_cents"`
	ClosingDate     string `json:"closing_date"`
	EventDate       string `json:"event_date"`
	GuestCount      int    `json:"guest_count"`
	Theme           string `json:"theme"`
	TimeSlot        string `json:"time_slot"`
	Notes           string `json:"notes"`
}

// UpdatePartyRequest is the request to update a sale's contract fields.
// Paid amounts are never updated here; they follow the payment endpoints.
type UpdatePartyRequest struct {
	TotalValueCents int64  `json:"total_value_cents"`
	ClosingDate     string `json:"closing_date"`
	EventDate       string `json:"event_date"`
	GuestCount      int    `json:"guest_count"`
	Theme           string `json:"theme"`
	TimeSlot        string `json:"time_slot"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

// PartyStatsDTO is the portfolio aggregate view.
type PartyStatsDTO struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Performed int `json:"performed"`
	Canceled  int `json:"canceled"`

	TotalValueCents int64  `json:"total_value_cents"`
	TotalPaidCents  int64  `json:"total_paid_cents"`
	ReceivableCents int64  `json:"receivable_cents"`
	AverageTicket   string `json:"average_ticket_cents"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents a partial payment.
type PaymentDTO struct {
	ID         int64  `json:"id"`
	PartyID    int64  `json:"party_id"`
	ValueCents int64  `json:"value_cents"`
	PaidAt     string `json:"paid_at"`
	Method     string `json:"method,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// CreatePaymentRequest registers a payment against a party.
type CreatePaymentRequest struct {
	ValueCents int64  `json:"value_cents"`
	PaidAt     string `json:"paid_at"`
	Method     string `json:"method"`
	Notes      string `json:"notes"`
}

// PaymentSummaryDTO is the per-party payment rollup.
type PaymentSummaryDTO struct {
	PartyID         int64        `json:"party_id"`
	TotalValueCents int64        `json:"total_value_cents"`
	TotalPaidCents  int64        `json:"total_paid_cents"`
	BalanceCents    int64        `json:"balance_cents"`
	PercentPaid     string       `json:"percent_paid"`
	Payments        []PaymentDTO `json:"payments"`
}

// =============================================================================
// CLIENTS
// =============================================================================

// ClientDTO represents a lead or customer.
type ClientDTO struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Phone               string `json:"phone,omitempty"`
	Email               string `json:"email,omitempty"`
	Origin              string `json:"origin"`
	FunnelStatus        string `json:"funnel_status"`
	PotentialValueCents int64  `json:"potential_value_cents"`
	Notes               string `json:"notes,omitempty"`
	CreatedAt           string `json:"created_at,omitempty"`
}

// CreateClientRequest creates or updates a client.
type CreateClientRequest struct {
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Origin              string `json:"origin"`
	FunnelStatus        string `json:"funnel_status"`
	PotentialValueCents int64  `json:"potential_value_cents"`
	Notes               string `json:"notes"`
}

// UpdateFunnelRequest moves a client through the sales funnel.
type UpdateFunnelRequest struct {
	FunnelStatus string `json:"funnel_status"`
}

// ClientWithPartiesDTO is a client plus their registered sales.
type ClientWithPartiesDTO struct {
	Client  ClientDTO  `json:"client"`
	Parties []PartyDTO `json:"parties"`
}

// =============================================================================
// VISITS
// =============================================================================

// VisitDTO represents a booked venue tour.
type VisitDTO struct {
	ID          int64  `json:"id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ScheduledAt string `json:"scheduled_at"`
	EventType   string `json:"event_type,omitempty"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
}

// CreateVisitRequest books a venue tour.
type CreateVisitRequest struct {
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ScheduledAt string `json:"scheduled_at"`
	EventType   string `json:"event_type"`
	Notes       string `json:"notes"`
}

// UpdateVisitStatusRequest moves a visit through its lifecycle.
type UpdateVisitStatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// COSTS
// =============================================================================

// VariableCostDTO is a per-party cost, flat cents or percent of value.
type VariableCostDTO struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	ValueCents  int64  `json:"value_cents"`
	Percent     int    `json:"percent"`
	Active      bool   `json:"active"`
	Order       int    `json:"order"`
}

// FixedCostDTO is a monthly overhead entry.
type FixedCostDTO struct {
	ID             int64  `json:"id"`
	Description    string `json:"description"`
	ValueCents     int64  `json:"value_cents"`
	ReferenceMonth string `json:"reference_month"`
	Active         bool   `json:"active"`
	Order          int    `json:"order"`
}

// MarginDTO is the profitability view of a contract value against the
// active variable costs.
type MarginDTO struct {
	ValueCents        int64  `json:"value_cents"`
	VariableCostCents int64  `json:"variable_cost_cents"`
	FixedCostCents    int64  `json:"fixed_cost_cents"`
	GrossMarginCents  int64  `json:"gross_margin_cents"`
	MarginPercent     string `json:"margin_percent"`
}

// =============================================================================
// TRACKING
// =============================================================================

// HealthDTO is the payment-health classification of one party.
type HealthDTO struct {
	PartyID int64  `json:"party_id"`
	Code    string `json:"code"`
	Status  string `json:"status"`

	TotalPaidCents       int64 `json:"total_paid_cents"`
	BalanceCents         int64 `json:"balance_cents"`
	MinimumExpectedCents int64 `json:"minimum_expected_cents"`
	MonthsElapsed        int   `json:"months_elapsed"`
	DaysToEvent          int   `json:"days_to_event"`

	PayoffDeadline string `json:"payoff_deadline"`
}

// BucketDTO is one month of the cash-flow projection.
type BucketDTO struct {
	Month         string `json:"month"`
	ExpectedCents int64  `json:"expected_cents"`
	RealizedCents int64  `json:"realized_cents"`
	ContractsDue  int    `json:"contracts_due"`

	// Display figures in reais, derived from the cents values.
	ExpectedReais string `json:"expected_reais"`
	RealizedReais string `json:"realized_reais"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
