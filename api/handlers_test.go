/*
handlers_test.go - Handler tests over an in-memory store

Tests drive the full router with httptest so routing, JSON codecs and
status mapping are covered together with the handler logic.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festeja/receivables-engine/store/sqlite"
)

// fixedNow keeps classification and projection deterministic.
var fixedNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store)
	h.now = func() time.Time { return fixedNow }
	return h, NewRouter(h, []string{"*"})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createClient(t *testing.T, router http.Handler, name string) ClientDTO {
	rec := doJSON(t, router, http.MethodPost, "/api/clients", CreateClientRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[ClientDTO](t, rec)
}

func createParty(t *testing.T, router http.Handler, clientID int64, totalCents int64, closing, event string) PartyDTO {
	rec := doJSON(t, router, http.MethodPost, "/api/parties", CreatePartyRequest{
		ClientID:        clientID,
		TotalValueCents: totalCents,
		ClosingDate:     closing,
		EventDate:       event,
		GuestCount:      40,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[PartyDTO](t, rec)
}

// =============================================================================
// PARTY LIFECYCLE
// =============================================================================

func TestCreateParty_GeneratesCode(t *testing.T) {
	// GIVEN: A client named Maria Silva
	// WHEN: Registering three sales closed on the same day
	// THEN: Each collision takes the next free numeric suffix

	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")

	first := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")
	assert.Equal(t, "100125MA", first.Code)
	assert.Equal(t, "agendada", first.Status)

	second := createParty(t, router, client.ID, 300_000, "2025-01-10", "2025-07-05")
	assert.Equal(t, "100125MA1", second.Code)

	third := createParty(t, router, client.ID, 200_000, "2025-01-10", "2025-08-09")
	assert.Equal(t, "100125MA2", third.Code)
}

func TestCreateParty_UnknownClient(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/parties", CreatePartyRequest{
		ClientID:        99,
		TotalValueCents: 100_000,
		ClosingDate:     "2025-01-10",
		EventDate:       "2025-06-20",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPartyByCode(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	created := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")

	rec := doJSON(t, router, http.MethodGet, "/api/parties/code/"+created.Code, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[PartyDTO](t, rec)
	assert.Equal(t, created.ID, got.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/parties/code/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateParty_InvalidStatus(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	created := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/parties/%d", created.ID),
		UpdatePartyRequest{Status: "explodida"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPartyStats(t *testing.T) {
	// GIVEN: Two scheduled sales and one canceled
	// WHEN: Fetching portfolio stats
	// THEN: Canceled sales count but don't contribute money

	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")
	canceled := createParty(t, router, client.ID, 400_000, "2025-01-10", "2025-07-05")
	createParty(t, router, client.ID, 300_000, "2025-01-10", "2025-08-12")

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/parties/%d", canceled.ID),
		UpdatePartyRequest{Status: "cancelada"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/parties/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[PartyStatsDTO](t, rec)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Scheduled)
	assert.Equal(t, 1, stats.Canceled)
	assert.Equal(t, int64(800_000), stats.TotalValueCents)
	assert.Equal(t, "400000.00", stats.AverageTicket)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestPaymentLifecycle_Summary(t *testing.T) {
	// GIVEN: A 500000-cent sale
	// WHEN: Registering a 150000 payment
	// THEN: The summary reports balance 350000 and 30.00 percent paid

	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	party := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/parties/%d/payments", party.ID),
		CreatePaymentRequest{ValueCents: 150_000, PaidAt: "2025-02-01T10:00:00Z", Method: "pix"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/parties/%d/summary", party.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[PaymentSummaryDTO](t, rec)

	assert.Equal(t, int64(150_000), summary.TotalPaidCents)
	assert.Equal(t, int64(350_000), summary.BalanceCents)
	assert.Equal(t, "30.00", summary.PercentPaid)
	require.Len(t, summary.Payments, 1)
	assert.Equal(t, "pix", summary.Payments[0].Method)
}

func TestCreatePayment_Rejections(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	party := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/parties/%d/payments", party.ID),
		CreatePaymentRequest{ValueCents: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/parties/999/payments",
		CreatePaymentRequest{ValueCents: 10_000})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePayment_RestoresBalance(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	party := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/parties/%d/payments", party.ID),
		CreatePaymentRequest{ValueCents: 200_000})
	require.Equal(t, http.StatusCreated, rec.Code)
	payment := decode[PaymentDTO](t, rec)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/payments/%d", payment.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/parties/%d/summary", party.ID), nil)
	summary := decode[PaymentSummaryDTO](t, rec)
	assert.Equal(t, int64(0), summary.TotalPaidCents)
	assert.Equal(t, int64(500_000), summary.BalanceCents)
}

// =============================================================================
// CLIENTS
// =============================================================================

func TestDeleteClient_Conflict(t *testing.T) {
	// GIVEN: A client with a registered sale
	// WHEN: Deleting the client
	// THEN: 409 until the sale is removed

	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	party := createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/clients/%d", client.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/parties/%d", party.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/clients/%d", client.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientFunnel(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	assert.Equal(t, "novo", client.FunnelStatus)

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/clients/%d/funnel", client.ID),
		UpdateFunnelRequest{FunnelStatus: "proposta"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/clients/%d/funnel", client.ID),
		UpdateFunnelRequest{FunnelStatus: "desistiu"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetClientWithParties(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	createParty(t, router, client.ID, 500_000, "2025-01-10", "2025-06-20")
	createParty(t, router, client.ID, 300_000, "2025-01-10", "2025-07-05")

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/clients/%d/parties", client.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ClientWithPartiesDTO](t, rec)

	assert.Equal(t, "Maria Silva", got.Client.Name)
	assert.Len(t, got.Parties, 2)
}

// =============================================================================
// VISITS
// =============================================================================

func TestCreateVisit_Conflict(t *testing.T) {
	// GIVEN: A booked slot
	// WHEN: Booking the same instant again
	// THEN: 409

	_, router := newTestServer(t)

	req := CreateVisitRequest{
		ClientName:  "Joana",
		ClientPhone: "11999998888",
		ScheduledAt: "2025-06-07T14:00:00Z",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/visits", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/visits", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// COSTS
// =============================================================================

func TestMarginEndpoint(t *testing.T) {
	// GIVEN: A flat 80000 cost and a 5 percent commission, both active
	// WHEN: Computing the margin of a 1000000 contract
	// THEN: Variable cost 130000, gross margin 870000, 87.00 percent

	_, router := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/costs/variable",
		VariableCostDTO{Description: "Buffet", ValueCents: 80_000, Active: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/costs/variable",
		VariableCostDTO{Description: "Comissao", Percent: 5, Active: true})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/costs/margin?value_cents=1000000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	margin := decode[MarginDTO](t, rec)

	assert.Equal(t, int64(130_000), margin.VariableCostCents)
	assert.Equal(t, int64(870_000), margin.GrossMarginCents)
	assert.Equal(t, "87.00", margin.MarginPercent)
}

// =============================================================================
// TRACKING
// =============================================================================

func TestTrackingHealth(t *testing.T) {
	// GIVEN: A paid-up sale and one behind pace, relative to the fixed now
	// WHEN: Fetching the health list
	// THEN: The late one ranks first and both carry the right status

	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")

	// Closed 60 days before now, event 40 days after now, nothing paid.
	late := createParty(t, router, client.ID, 500_000, "2025-01-14", "2025-04-24")

	settled := createParty(t, router, client.ID, 200_000, "2025-01-14", "2025-05-10")
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/parties/%d/payments", settled.ID),
		CreatePaymentRequest{ValueCents: 200_000, PaidAt: "2025-02-01T10:00:00Z"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tracking/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	healths := decode[[]HealthDTO](t, rec)

	require.Len(t, healths, 2)
	assert.Equal(t, late.ID, healths[0].PartyID)
	assert.Equal(t, "atrasado", healths[0].Status)
	assert.Equal(t, int64(100_000), healths[0].MinimumExpectedCents)
	assert.Equal(t, settled.ID, healths[1].PartyID)
	assert.Equal(t, "quitado", healths[1].Status)
}

func TestTrackingProjection(t *testing.T) {
	// GIVEN: One open sale with a 300000 balance due within the window
	// WHEN: Fetching the projection
	// THEN: 12 buckets starting at the current month, expected sums to the balance

	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	createParty(t, router, client.ID, 300_000, "2025-01-14", "2025-06-13")

	rec := doJSON(t, router, http.MethodGet, "/api/tracking/projection", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	buckets := decode[[]BucketDTO](t, rec)

	require.Len(t, buckets, 12)
	assert.Equal(t, "2025-03", buckets[0].Month)

	var total int64
	for _, b := range buckets {
		total += b.ExpectedCents
	}
	assert.Equal(t, int64(300_000), total)
	assert.Equal(t, "1000.00", buckets[0].ExpectedReais)
}

func TestTrackingProjection_ExcludesCanceled(t *testing.T) {
	_, router := newTestServer(t)
	client := createClient(t, router, "Maria Silva")
	party := createParty(t, router, client.ID, 300_000, "2025-01-14", "2025-06-13")

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/parties/%d", party.ID),
		UpdatePartyRequest{Status: "cancelada"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tracking/projection", nil)
	buckets := decode[[]BucketDTO](t, rec)
	for _, b := range buckets {
		assert.Zero(t, b.ExpectedCents)
		assert.Zero(t, b.ContractsDue)
	}
}
