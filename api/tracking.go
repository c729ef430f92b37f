/*
tracking.go - Payment-health and cash-flow projection endpoints

PURPOSE:
  The derived views over parties and payments. Nothing here is stored:
  both endpoints recompute from the live records on every request, so a
  payment registered a second ago moves the dashboard immediately.

ENDPOINTS:
  GET /api/tracking/health       Per-party payment-health classification
  GET /api/tracking/projection   12-month receivables projection

SEE ALSO:
  - receivables: Classify and Project
  - scheduler.go: Background alerts built on the same classification
*/
package api

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/festeja/receivables-engine/receivables"
)

// GetTrackingHealth classifies every non-canceled party, worst first.
func (h *Handler) GetTrackingHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parties, err := h.Store.ListParties(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parties", err)
		return
	}
	paymentsByParty, err := h.Store.PaymentsByParty(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}

	now := h.now()
	var dtos []HealthDTO
	for _, p := range parties {
		if p.Status == receivables.PartyCanceled {
			continue
		}
		health := h.Pacing.Classify(p, paymentsByParty[p.ID], now)
		dtos = append(dtos, HealthDTO{
			PartyID:              health.PartyID,
			Code:                 p.Code,
			Status:               string(health.Status),
			TotalPaidCents:       health.TotalPaidCents,
			BalanceCents:         health.BalanceCents,
			MinimumExpectedCents: health.MinimumExpectedCents,
			MonthsElapsed:        health.MonthsElapsed,
			DaysToEvent:          health.DaysToEvent,
			PayoffDeadline:       health.PayoffDeadline.Format("2006-01-02"),
		})
	}

	sort.SliceStable(dtos, func(i, j int) bool {
		return statusRank(dtos[i].Status) < statusRank(dtos[j].Status)
	})

	if dtos == nil {
		dtos = []HealthDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// statusRank orders classifications by urgency for the dashboard list.
func statusRank(status string) int {
	switch receivables.Status(status) {
	case receivables.StatusNaoQuitado:
		return 0
	case receivables.StatusAlertaQuitacao:
		return 1
	case receivables.StatusAtrasado:
		return 2
	case receivables.StatusEmDia:
		return 3
	case receivables.StatusQuitado:
		return 4
	}
	return 5
}

// GetTrackingProjection returns the 12-month receivables projection.
func (h *Handler) GetTrackingProjection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parties, err := h.Store.ListParties(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parties", err)
		return
	}
	paymentsByParty, err := h.Store.PaymentsByParty(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}

	// Canceled parties carry no receivable.
	active := make([]receivables.Party, 0, len(parties))
	for _, p := range parties {
		if p.Status != receivables.PartyCanceled {
			active = append(active, p)
		}
	}

	buckets := h.Pacing.Project(active, paymentsByParty, h.now())

	dtos := make([]BucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = BucketDTO{
			Month:         b.Label(),
			ExpectedCents: b.ExpectedCents,
			RealizedCents: b.RealizedCents,
			ContractsDue:  b.ContractsDue,
			ExpectedReais: centsToReais(b.ExpectedCents),
			RealizedReais: centsToReais(b.RealizedCents),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// centsToReais formats an integer cents value as reais with two decimals.
func centsToReais(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
