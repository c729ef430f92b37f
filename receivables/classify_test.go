package receivables_test

import (
	"testing"
	"time"

	"github.com/festeja/receivables-engine/receivables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Frozen evaluation instant. Mid-month, midday, so date arithmetic in the
// tests never straddles a month or DST boundary by accident.
var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func party(totalCents int64, closing, event time.Time) receivables.Party {
	return receivables.Party{
		ID:              1,
		TotalValueCents: totalCents,
		ClosingDate:     closing,
		EventDate:       event,
		Status:          receivables.PartyScheduled,
	}
}

func paid(cents int64, at time.Time) receivables.Payment {
	return receivables.Payment{PartyID: 1, ValueCents: cents, PaidAt: at}
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// =============================================================================
// STATUS PRECEDENCE
// =============================================================================

func TestClassify_FullyPaid_QuitadoRegardlessOfDates(t *testing.T) {
	// GIVEN: Contracts paid in full (exactly and overpaid)
	// WHEN: Classified with the event long past or far in the future
	// THEN: Status is quitado - payoff beats every time-based rule

	cases := []struct {
		name  string
		event time.Time
		pays  []receivables.Payment
	}{
		{"exact payoff, event passed", now.Add(-days(100)), []receivables.Payment{paid(300_000, now.Add(-days(120)))}},
		{"overpaid, event imminent", now.Add(days(2)), []receivables.Payment{paid(200_000, now.Add(-days(30))), paid(150_000, now.Add(-days(10)))}},
		{"zero-value contract, no payments", now.Add(days(90)), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := party(300_000, now.Add(-days(200)), tc.event)
			if tc.name == "zero-value contract, no payments" {
				p.TotalValueCents = 0
			}
			h := receivables.DefaultPacing.Classify(p, tc.pays, now)
			assert.Equal(t, receivables.StatusQuitado, h.Status)
			assert.LessOrEqual(t, h.BalanceCents, int64(0))
		})
	}
}

func TestClassify_DeadlinePassed_NaoQuitado(t *testing.T) {
	// GIVEN: Event in 5 days, so the payoff deadline (event - 10 days)
	//        passed 5 days ago, and the contract still owes money
	// WHEN: Classified
	// THEN: Status is nao_quitado even though payments were on pace

	p := party(500_000, now.Add(-days(60)), now.Add(days(5)))
	h := receivables.DefaultPacing.Classify(p, nil, now)

	assert.Equal(t, receivables.StatusNaoQuitado, h.Status)
	assert.Equal(t, int64(500_000), h.BalanceCents)
	assert.Equal(t, 5, h.DaysToEvent)
	assert.True(t, h.PayoffDeadline.Before(now))
}

func TestClassify_EventAlreadyPassed_NaoQuitado(t *testing.T) {
	// GIVEN: The event happened yesterday and money is still owed
	// WHEN: Classified
	// THEN: nao_quitado, with a negative days-to-event

	p := party(500_000, now.Add(-days(60)), now.Add(-days(1)))
	h := receivables.DefaultPacing.Classify(p, []receivables.Payment{paid(100_000, now.Add(-days(30)))}, now)

	assert.Equal(t, receivables.StatusNaoQuitado, h.Status)
	assert.Equal(t, -1, h.DaysToEvent)
}

func TestClassify_InsidePayoffWindow_AlertaQuitacao(t *testing.T) {
	// GIVEN: Event 10.5 days out: days-to-event floors to 10 (inside the
	//        alert window) while the deadline itself is still 12h away
	// WHEN: Classified with an open balance
	// THEN: alerta_quitacao - imminent, but the deadline hasn't passed

	p := party(500_000, now.Add(-days(60)), now.Add(days(10)+12*time.Hour))
	h := receivables.DefaultPacing.Classify(p, []receivables.Payment{paid(400_000, now.Add(-days(5)))}, now)

	assert.Equal(t, receivables.StatusAlertaQuitacao, h.Status)
	assert.Equal(t, 10, h.DaysToEvent)
	assert.True(t, now.Before(h.PayoffDeadline))
}

func TestClassify_OnPace_EmDia(t *testing.T) {
	// GIVEN: R$5000 contract closed 60 days ago, event in 40 days,
	//        R$1000 paid 30 days ago
	// WHEN: Classified
	// THEN: 2 months elapsed, minimum expected R$1000, paid R$1000 -> em_dia

	p := party(500_000, now.Add(-days(60)), now.Add(days(40)))
	h := receivables.DefaultPacing.Classify(p, []receivables.Payment{paid(100_000, now.Add(-days(30)))}, now)

	require.Equal(t, receivables.StatusEmDia, h.Status)
	assert.Equal(t, int64(100_000), h.TotalPaidCents)
	assert.Equal(t, int64(400_000), h.BalanceCents)
	assert.Equal(t, 2, h.MonthsElapsed)
	assert.Equal(t, int64(100_000), h.MinimumExpectedCents)
	assert.Equal(t, 40, h.DaysToEvent)
}

func TestClassify_BehindPace_Atrasado(t *testing.T) {
	// GIVEN: Same contract but only R$400 paid against a R$1000 minimum
	// WHEN: Classified
	// THEN: atrasado

	p := party(500_000, now.Add(-days(60)), now.Add(days(40)))
	h := receivables.DefaultPacing.Classify(p, []receivables.Payment{paid(40_000, now.Add(-days(30)))}, now)

	assert.Equal(t, receivables.StatusAtrasado, h.Status)
	assert.Equal(t, int64(100_000), h.MinimumExpectedCents)
}

// =============================================================================
// INTERMEDIATE VALUES
// =============================================================================

func TestClassify_BalanceIsExactIntegerArithmetic(t *testing.T) {
	// GIVEN: A payment stream with odd cent values
	// WHEN: Classified
	// THEN: Balance is exactly total minus the sum, no rounding anywhere

	p := party(123_457, now.Add(-days(10)), now.Add(days(90)))
	pays := []receivables.Payment{
		paid(33_333, now.Add(-days(9))),
		paid(1, now.Add(-days(8))),
		paid(49_999, now.Add(-days(7))),
	}
	h := receivables.DefaultPacing.Classify(p, pays, now)

	assert.Equal(t, int64(83_333), h.TotalPaidCents)
	assert.Equal(t, int64(40_124), h.BalanceCents)
}

func TestClassify_PaymentOrderIrrelevant(t *testing.T) {
	// GIVEN: The same payments in two different orders
	// WHEN: Classified
	// THEN: Identical results - only sum and dates matter

	p := party(500_000, now.Add(-days(60)), now.Add(days(40)))
	a := []receivables.Payment{paid(60_000, now.Add(-days(50))), paid(40_000, now.Add(-days(10)))}
	b := []receivables.Payment{paid(40_000, now.Add(-days(10))), paid(60_000, now.Add(-days(50)))}

	assert.Equal(t,
		receivables.DefaultPacing.Classify(p, a, now),
		receivables.DefaultPacing.Classify(p, b, now),
	)
}

func TestClassify_FutureClosingDate_NegativeMonthsClampedInMinimum(t *testing.T) {
	// GIVEN: A contract whose closing date is 45 days in the future
	//        (pre-registered sale), event a year out, nothing paid
	// WHEN: Classified
	// THEN: Raw months elapsed is negative but the minimum expected is
	//       zero, so the contract is em_dia rather than atrasado

	p := party(500_000, now.Add(days(45)), now.Add(days(365)))
	h := receivables.DefaultPacing.Classify(p, nil, now)

	assert.Equal(t, receivables.StatusEmDia, h.Status)
	assert.Equal(t, -2, h.MonthsElapsed) // floor(-45/30)
	assert.Equal(t, int64(0), h.MinimumExpectedCents)
}

func TestClassify_PinnedNow_IsDeterministic(t *testing.T) {
	// GIVEN: One party, one frozen instant
	// WHEN: Classified repeatedly
	// THEN: Referentially transparent - same output every time

	p := party(500_000, now.Add(-days(60)), now.Add(days(40)))
	pays := []receivables.Payment{paid(100_000, now.Add(-days(30)))}

	first := receivables.DefaultPacing.Classify(p, pays, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, receivables.DefaultPacing.Classify(p, pays, now))
	}
}
