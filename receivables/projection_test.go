package receivables_test

import (
	"testing"
	"time"

	"github.com/festeja/receivables-engine/receivables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(parties []receivables.Party, paymentsByParty map[int64][]receivables.Payment) []receivables.Bucket {
	return receivables.DefaultPacing.Project(parties, paymentsByParty, now)
}

func expectedOf(buckets []receivables.Bucket) []int64 {
	out := make([]int64, len(buckets))
	for i, b := range buckets {
		out[i] = b.ExpectedCents
	}
	return out
}

func sumExpected(buckets []receivables.Bucket) int64 {
	var total int64
	for _, b := range buckets {
		total += b.ExpectedCents
	}
	return total
}

// =============================================================================
// BUCKET SHAPE
// =============================================================================

func TestProject_AlwaysTwelveChronologicalBuckets(t *testing.T) {
	// GIVEN: No contracts at all
	// WHEN: Projecting
	// THEN: Exactly 12 empty buckets, strictly increasing months,
	//       starting with the current month

	buckets := project(nil, nil)
	require.Len(t, buckets, 12)

	assert.Equal(t, now.Year(), buckets[0].Year)
	assert.Equal(t, now.Month(), buckets[0].Month)

	for i := 1; i < len(buckets); i++ {
		prev := time.Date(buckets[i-1].Year, buckets[i-1].Month, 1, 0, 0, 0, 0, time.UTC)
		cur := time.Date(buckets[i].Year, buckets[i].Month, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, prev.AddDate(0, 1, 0), cur, "bucket %d should be one calendar month after bucket %d", i, i-1)
	}
	for _, b := range buckets {
		assert.Zero(t, b.ExpectedCents)
		assert.Zero(t, b.RealizedCents)
		assert.Zero(t, b.ContractsDue)
	}
}

func TestProject_YearBoundaryWrapsCorrectly(t *testing.T) {
	// GIVEN: Evaluation in November
	// WHEN: Projecting
	// THEN: Buckets run Nov..Dec of this year then Jan..Oct of the next

	november := time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)
	buckets := receivables.DefaultPacing.Project(nil, nil, november)
	require.Len(t, buckets, 12)

	assert.Equal(t, time.November, buckets[0].Month)
	assert.Equal(t, 2025, buckets[0].Year)
	assert.Equal(t, time.January, buckets[2].Month)
	assert.Equal(t, 2026, buckets[2].Year)
	assert.Equal(t, time.October, buckets[11].Month)
	assert.Equal(t, 2026, buckets[11].Year)
}

// =============================================================================
// DISTRIBUTION
// =============================================================================

func TestProject_ThreeMonthDistribution_LastMonthAbsorbsRemainder(t *testing.T) {
	// GIVEN: One contract owing R$1200 with its payoff deadline 75 days out
	//        (ceil(75/30) = 3 months to payoff)
	// WHEN: Projecting
	// THEN: Installment is max(50000, ceil(120000/3)) = 50000 and the
	//       distribution is [50000, 50000, 20000] - summing exactly to the
	//       balance, remainder absorbed by the min(installment, remaining)
	//       rule in the last month

	p := party(120_000, now.Add(-days(30)), now.Add(days(85)))
	buckets := project([]receivables.Party{p}, nil)

	assert.Equal(t, []int64{50_000, 50_000, 20_000, 0, 0, 0, 0, 0, 0, 0, 0, 0}, expectedOf(buckets))
	assert.Equal(t, int64(120_000), sumExpected(buckets))
}

func TestProject_BalanceConservedWhenPayoffWithinWindow(t *testing.T) {
	// GIVEN: A contract with an awkward balance and 7 months to its deadline
	// WHEN: Projecting
	// THEN: The 12 visible buckets sum to exactly the balance - nothing
	//       leaks, nothing double-counts

	p := party(777_777, now.Add(-days(10)), now.Add(days(30*6+25)+10*24*time.Hour))
	pays := map[int64][]receivables.Payment{1: {paid(111_111, now.Add(-days(5)))}}

	buckets := project([]receivables.Party{p}, pays)
	assert.Equal(t, int64(666_666), sumExpected(buckets))
}

func TestProject_PayoffBeyondWindow_VisibleSumStrictlyLess(t *testing.T) {
	// GIVEN: A large contract paying off 14 months from now
	// WHEN: Projecting
	// THEN: Only 12 of the 14 installments are visible, so the window sum
	//       is strictly less than the balance

	p := party(1_400_000, now.Add(-days(10)), now.Add(days(30*13+15)+10*24*time.Hour))
	buckets := project([]receivables.Party{p}, nil)

	total := sumExpected(buckets)
	assert.Less(t, total, int64(1_400_000))
	assert.Equal(t, int64(1_200_000), total) // 12 x ceil(1400000/14)
}

func TestProject_MinimumInstallmentFloor_FrontLoadsSmallBalances(t *testing.T) {
	// GIVEN: R$600 owing with a deadline a year away - the naive
	//        installment (R$50/month) is below the R$500 minimum pace
	// WHEN: Projecting
	// THEN: The minimum wins: R$500 this month, R$100 next, nothing after

	p := party(60_000, now.Add(-days(10)), now.Add(days(30*11+15)+10*24*time.Hour))
	buckets := project([]receivables.Party{p}, nil)

	assert.Equal(t, []int64{50_000, 10_000, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, expectedOf(buckets))
}

func TestProject_OverduePayoff_EntireBalanceInCurrentMonth(t *testing.T) {
	// GIVEN: A contract whose payoff deadline passed two months ago,
	//        still owing R$3000
	// WHEN: Projecting
	// THEN: months-to-payoff floors to 1 and the whole balance surfaces as
	//       immediately expected in the current month instead of dropping
	//       out of the forecast

	p := party(300_000, now.Add(-days(200)), now.Add(-days(50)))
	buckets := project([]receivables.Party{p}, nil)

	assert.Equal(t, int64(300_000), buckets[0].ExpectedCents)
	assert.Equal(t, int64(300_000), sumExpected(buckets))
	// The deadline month is in the past, so no bucket counts it as due.
	for _, b := range buckets {
		assert.Zero(t, b.ContractsDue)
	}
}

func TestProject_SettledContract_ContributesNothing(t *testing.T) {
	// GIVEN: A fully-paid contract, including a payment dated in the future
	// WHEN: Projecting
	// THEN: Every bucket stays empty - settled contracts are skipped
	//       entirely, even for realized receipts

	p := party(200_000, now.Add(-days(60)), now.Add(days(45)))
	pays := map[int64][]receivables.Payment{1: {
		paid(150_000, now.Add(-days(30))),
		paid(50_000, now.Add(days(20))), // post-dated check, already counted in balance
	}}

	buckets := project([]receivables.Party{p}, pays)
	for _, b := range buckets {
		assert.Zero(t, b.ExpectedCents)
		assert.Zero(t, b.RealizedCents)
		assert.Zero(t, b.ContractsDue)
	}
}

// =============================================================================
// DUE COUNTS
// =============================================================================

func TestProject_DueCountUsesDeadlineMonth_NotDistributionSchedule(t *testing.T) {
	// GIVEN: A small balance that the minimum pace clears this month, but
	//        a payoff deadline five months out
	// WHEN: Projecting
	// THEN: The expected money lands in the current month while the due
	//       count lands in the actual deadline month - the two are
	//       independent

	p := party(10_000, now.Add(-days(10)), now.Add(days(30*4+25)+10*24*time.Hour))
	buckets := project([]receivables.Party{p}, nil)

	assert.Equal(t, int64(10_000), buckets[0].ExpectedCents)
	assert.Equal(t, 0, buckets[0].ContractsDue)

	deadline := receivables.DefaultPacing.PayoffDeadline(p)
	found := false
	for _, b := range buckets {
		if b.Year == deadline.Year() && b.Month == deadline.Month() {
			assert.Equal(t, 1, b.ContractsDue)
			found = true
		} else {
			assert.Zero(t, b.ContractsDue)
		}
	}
	assert.True(t, found, "deadline month should fall inside the window")
}

// =============================================================================
// REALIZED RECEIPTS
// =============================================================================

func TestProject_RealizedBucketsFuturePaymentsOnly(t *testing.T) {
	// GIVEN: An open contract with one past payment and two future-dated
	//        ones (post-dated checks) 45 and 400 days out
	// WHEN: Projecting
	// THEN: The past payment is excluded (it already lives in the balance),
	//       the 45-day payment lands in its calendar month, and the payment
	//       beyond the window is dropped

	p := party(1_000_000, now.Add(-days(60)), now.Add(days(300)))
	pays := map[int64][]receivables.Payment{1: {
		paid(100_000, now.Add(-days(30))),
		paid(50_000, now.Add(days(45))),
		paid(25_000, now.Add(days(400))),
	}}

	buckets := project([]receivables.Party{p}, pays)

	var realizedTotal int64
	for _, b := range buckets {
		realizedTotal += b.RealizedCents
	}
	assert.Equal(t, int64(50_000), realizedTotal)

	// now is March 15; +45 days is April
	assert.Equal(t, int64(50_000), buckets[1].RealizedCents)
}

func TestProject_MultipleContracts_Accumulate(t *testing.T) {
	// GIVEN: Two open contracts both paying off within three months
	// WHEN: Projecting
	// THEN: Bucket totals are the sum of both distributions

	a := party(120_000, now.Add(-days(30)), now.Add(days(85)))
	b := party(90_000, now.Add(-days(30)), now.Add(days(85)))
	b.ID = 2

	buckets := project([]receivables.Party{a, b}, nil)

	// a: [50000 50000 20000], b: [50000 40000 0] (ceil(90000/3)=30000 -> min 50000)
	assert.Equal(t, []int64{100_000, 90_000, 20_000, 0, 0, 0, 0, 0, 0, 0, 0, 0}, expectedOf(buckets))
	assert.Equal(t, int64(210_000), sumExpected(buckets))
	assert.Equal(t, 2, buckets[2].ContractsDue)
}
