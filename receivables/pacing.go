/*
pacing.go - Shared pacing constants and day-count arithmetic

PURPOSE:
  Both the classifier and the projector depend on the same two business
  constants: the minimum monthly payment pace and the payoff window before
  the event. Keeping them on one injected PacingPolicy guarantees the two
  views can never disagree about the rules within a reporting pass.

DAY-COUNT CONVENTIONS:
  Elapsed and remaining time use a fixed 30-day month and a fixed 24-hour
  day. Projection bucket KEYS use real calendar (year, month) pairs. The two
  conventions are not equivalent and are both kept on purpose: the business
  accepted the approximation, and "fixing" it would shift classifications
  near month boundaries.

SEE ALSO:
  - classify.go: Uses MinimumMonthlyCents and PayoffWindowDays
  - projection.go: Uses both plus the 30-day month for monthsToPayoff
*/
package receivables

import "time"

// =============================================================================
// PACING POLICY
// =============================================================================

// PacingPolicy carries the pacing rules shared by Classify and Project.
type PacingPolicy struct {
	// MinimumMonthlyCents is the minimum cumulative payment per elapsed
	// month for a contract to be considered on track, and the floor for
	// each projected installment.
	MinimumMonthlyCents int64

	// PayoffWindowDays is how many days before the event the full balance
	// is due.
	PayoffWindowDays int
}

// DefaultPacing holds the business defaults: R$500,00 per month and full
// payoff 10 days before the event.
var DefaultPacing = PacingPolicy{
	MinimumMonthlyCents: 50_000,
	PayoffWindowDays:    10,
}

// PayoffDeadline is the date by which the party must be fully paid.
func (pol PacingPolicy) PayoffDeadline(party Party) time.Time {
	return party.EventDate.AddDate(0, 0, -pol.PayoffWindowDays)
}

// =============================================================================
// FIXED-UNIT TIME MATH
// =============================================================================

const (
	fixedDay   = 24 * time.Hour
	fixedMonth = 30 * fixedDay
)

// monthsBetween returns floor((to - from) / 30 days). Negative when 'to'
// precedes 'from' (floor, not truncation: -1 day is month -1, not 0).
func monthsBetween(from, to time.Time) int {
	return int(floorDiv(int64(to.Sub(from)), int64(fixedMonth)))
}

// daysBetween returns floor((to - from) / 24h), with the same floor
// semantics as monthsBetween.
func daysBetween(from, to time.Time) int {
	return int(floorDiv(int64(to.Sub(from)), int64(fixedDay)))
}

// monthsBetweenCeil returns ceil((to - from) / 30 days). Zero or negative
// when 'to' is not in the future.
func monthsBetweenCeil(from, to time.Time) int {
	return int(ceilDiv(int64(to.Sub(from)), int64(fixedMonth)))
}

// floorDiv divides rounding toward negative infinity. Go's integer division
// truncates toward zero, which disagrees for negative dividends.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ceilDiv divides rounding toward positive infinity.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// =============================================================================
// CALENDAR MONTH KEYS (projection buckets)
// =============================================================================

// monthKey identifies a calendar month. Used only for bucket keying; all
// elapsed-time math uses the fixed 30-day month above.
type monthKey struct {
	year  int
	month time.Month
}

// monthKeyOf normalizes a time to its calendar month.
func monthKeyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

// addMonths advances a month key without day-of-month overflow (adding one
// month to January 31 must give February, not March).
func (k monthKey) addMonths(n int) monthKey {
	m0 := k.year*12 + int(k.month) - 1 + n
	return monthKey{year: m0 / 12, month: time.Month(m0%12 + 1)}
}

// monthsUntil returns how many calendar months ahead 'other' is.
func (k monthKey) monthsUntil(other monthKey) int {
	return (other.year-k.year)*12 + int(other.month) - int(k.month)
}
