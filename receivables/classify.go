/*
classify.go - Per-party payment-health classification

PURPOSE:
  Given one party and its payment history, derive the payment-health status
  and every intermediate figure dashboards need. This is a pure function of
  (party, payments, now); nothing is persisted and nothing is cached.

STATUS PRECEDENCE (first match wins):
  1. quitado          balance <= 0 (full payoff beats every time rule)
  2. nao_quitado      the payoff deadline has passed, still owing
  3. alerta_quitacao  10 days or less to the event, deadline not yet passed
  4. em_dia           cumulative payments meet the minimum monthly pace
  5. atrasado         behind the minimum monthly pace

  The order encodes business priority: a paid-off contract is healthy no
  matter the calendar, and a missed deadline overrides pace.

PACE RULE:
  The minimum expected payment grows by MinimumMonthlyCents for every full
  30-day month since the closing date. A contract closed in the future owes
  nothing yet (months clamp to zero inside the minimum, though the raw
  negative count is still reported).

SEE ALSO:
  - pacing.go: PacingPolicy and the day-count helpers
  - projection.go: Uses the same balance computation for distribution
*/
package receivables

import "time"

// Classify derives the payment-health view of one party at the given
// instant. It never fails: a zero-value contract is trivially "quitado" and
// no division occurs anywhere.
//
// Callers that need classifier and projector output to agree must pass the
// same 'now' to both.
func (pol PacingPolicy) Classify(party Party, payments []Payment, now time.Time) Health {
	totalPaid := TotalPaidCents(payments)
	balance := party.TotalValueCents - totalPaid

	monthsElapsed := monthsBetween(party.ClosingDate, now)
	daysToEvent := daysBetween(now, party.EventDate)
	deadline := pol.PayoffDeadline(party)

	// Months clamp to zero for the pace check only; the raw count is
	// reported so callers can tell "closed in the future" apart from
	// "closed this month".
	paceMonths := monthsElapsed
	if paceMonths < 0 {
		paceMonths = 0
	}
	minimumExpected := int64(paceMonths) * pol.MinimumMonthlyCents

	var status Status
	switch {
	case balance <= 0:
		status = StatusQuitado
	case !now.Before(deadline):
		status = StatusNaoQuitado
	case daysToEvent <= pol.PayoffWindowDays:
		status = StatusAlertaQuitacao
	case totalPaid >= minimumExpected:
		status = StatusEmDia
	default:
		status = StatusAtrasado
	}

	return Health{
		PartyID:              party.ID,
		Status:               status,
		TotalPaidCents:       totalPaid,
		BalanceCents:         balance,
		MinimumExpectedCents: minimumExpected,
		MonthsElapsed:        monthsElapsed,
		DaysToEvent:          daysToEvent,
		PayoffDeadline:       deadline,
	}
}
