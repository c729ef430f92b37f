/*
stats.go - Aggregate sales statistics

PURPOSE:
  Summarizes the whole portfolio for the dashboard header: how many sales,
  how much contracted, how much received, how much still to collect, and the
  average ticket. Canceled parties are excluded from money figures since
  their contracts no longer produce receivables.

PRECISION:
  Totals stay int64 cents. Only the average ticket divides, and it uses
  decimal.Decimal so a portfolio of three R$999,99 parties doesn't lose a
  cent to binary floats.
*/
package receivables

import "github.com/shopspring/decimal"

// Stats aggregates the sales portfolio. Money fields are cents except
// AverageTicket, which is a decimal cents value for display.
type Stats struct {
	Total     int
	Scheduled int
	Performed int
	Canceled  int

	TotalValueCents int64
	TotalPaidCents  int64
	ReceivableCents int64

	// AverageTicket is TotalValueCents / confirmed sales (scheduled +
	// performed), in decimal cents. Zero when there are no confirmed sales.
	AverageTicket decimal.Decimal
}

// SalesStats computes portfolio-level figures from the party list. Paid
// amounts come from the store-maintained running sums; per-party precision
// checks belong to Classify, not here.
func SalesStats(parties []Party) Stats {
	s := Stats{AverageTicket: decimal.Zero}

	var confirmed int64
	for _, p := range parties {
		s.Total++
		switch p.Status {
		case PartyScheduled:
			s.Scheduled++
		case PartyPerformed:
			s.Performed++
		case PartyCanceled:
			s.Canceled++
			continue
		}

		// Scheduled and performed are both confirmed sales; ticket size
		// and receivables consider them equally.
		confirmed++
		s.TotalValueCents += p.TotalValueCents
		s.TotalPaidCents += p.PaidCents
	}
	s.ReceivableCents = s.TotalValueCents - s.TotalPaidCents

	if confirmed > 0 {
		s.AverageTicket = decimal.NewFromInt(s.TotalValueCents).
			Div(decimal.NewFromInt(confirmed))
	}
	return s
}
