/*
projection.go - 12-month cash-flow projection

PURPOSE:
  Distributes every open contract's outstanding balance across the months
  remaining before its payoff deadline, producing 12 forward buckets of
  expected vs. realized receipts for financial planning.

DISTRIBUTION RULE:
  For each open party:
    monthsToPayoff = max(1, ceil((deadline - now) / 30 days))
    installment    = max(MinimumMonthlyCents, ceil(balance / monthsToPayoff))
  then walk month by month assigning min(installment, remaining) until the
  balance is exhausted. The floor of 1 means an already-overdue contract
  lands its entire balance in the current month: overdue money surfaces as
  immediately-expected instead of silently disappearing.

  The walk runs for the full monthsToPayoff even when that exceeds the
  12-month window; iterations beyond the window still consume balance but
  are not recorded, so the visible sum is strictly less than the balance
  for contracts paying off more than a year out.

DUE COUNT:
  ContractsDue counts parties whose payoff deadline falls inside each
  calendar month. It is independent of the distribution walk: a contract
  whose balance is front-loaded into earlier months is still due in its
  actual deadline month.

SETTLED CONTRACTS:
  Parties with balance <= 0 contribute nothing to any bucket - not expected,
  not realized, not due counts. Their money already arrived.

SEE ALSO:
  - classify.go: The same balance computation feeding dashboards
  - pacing.go: 30-day month math vs. calendar bucket keys
*/
package receivables

import "time"

// projectionWindow is the number of forward month buckets. Fixed by the
// reporting contract: consumers render a 12-month planning horizon.
const projectionWindow = 12

// Project distributes outstanding balances across the next 12 calendar
// months. Buckets come back in chronological order starting with now's
// month. paymentsByParty maps Party.ID to that party's payments; parties
// missing from the map are treated as unpaid.
func (pol PacingPolicy) Project(parties []Party, paymentsByParty map[int64][]Payment, now time.Time) []Bucket {
	start := monthKeyOf(now)

	buckets := make([]Bucket, projectionWindow)
	for i := range buckets {
		k := start.addMonths(i)
		buckets[i] = Bucket{Year: k.year, Month: k.month}
	}

	for _, party := range parties {
		payments := paymentsByParty[party.ID]
		balance := BalanceCents(party, payments)
		if balance <= 0 {
			continue // settled, contributes nothing
		}

		deadline := pol.PayoffDeadline(party)
		monthsToPayoff := monthsBetweenCeil(now, deadline)
		if monthsToPayoff < 1 {
			monthsToPayoff = 1
		}

		installment := ceilDiv(balance, int64(monthsToPayoff))
		if installment < pol.MinimumMonthlyCents {
			installment = pol.MinimumMonthlyCents
		}

		remaining := balance
		for i := 0; i < monthsToPayoff && remaining > 0; i++ {
			v := remaining
			if installment < v {
				v = installment
			}
			remaining -= v
			if i < projectionWindow {
				buckets[i].ExpectedCents += v
			}
		}

		if idx := start.monthsUntil(monthKeyOf(deadline)); idx >= 0 && idx < projectionWindow {
			buckets[idx].ContractsDue++
		}

		// Payments dated before 'now' are already inside the balance;
		// counting them again here would double-book the month.
		for _, p := range payments {
			if p.PaidAt.Before(now) {
				continue
			}
			if idx := start.monthsUntil(monthKeyOf(p.PaidAt)); idx >= 0 && idx < projectionWindow {
				buckets[idx].RealizedCents += p.ValueCents
			}
		}
	}

	return buckets
}
