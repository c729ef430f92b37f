/*
handlers.go - HTTP handlers for parties and payments

PURPOSE:
  Exposes the receivables engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Parties:
    GET    /api/parties                 List (filters: status, client_id, from/to)
    POST   /api/parties                 Register a sale (code generated server-side)
    GET    /api/parties/stats           Portfolio aggregates
    GET    /api/parties/{id}            Get one sale
    GET    /api/parties/code/{code}     Lookup by contract code
    PUT    /api/parties/{id}            Update contract fields
    DELETE /api/parties/{id}            Delete sale and its payments

  Payments:
    GET    /api/parties/{id}/payments   Payment history
    POST   /api/parties/{id}/payments   Register a payment
    GET    /api/parties/{id}/summary    Paid / balance / percent rollup
    DELETE /api/payments/{id}           Remove a payment

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Conflict (duplicate code, slot taken, client has parties)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - crm_handlers.go: Client, visit and cost handlers
  - tracking.go: Health and projection handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/festeja/receivables-engine/crm"
	"github.com/festeja/receivables-engine/receivables"
	"github.com/festeja/receivables-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Pacing receivables.PacingPolicy

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewHandler creates a handler over the given store with the default
// payment pacing.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:  store,
		Pacing: receivables.DefaultPacing,
		now:    time.Now,
	}
}

// =============================================================================
// PARTY HANDLERS
// =============================================================================

// ListParties returns sales, optionally filtered by status, client or
// event-date range.
func (h *Handler) ListParties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		parties []receivables.Party
		err     error
	)
	switch {
	case q.Get("status") != "":
		parties, err = h.Store.ListPartiesByStatus(ctx, receivables.PartyStatus(q.Get("status")))
	case q.Get("client_id") != "":
		var clientID int64
		clientID, err = strconv.ParseInt(q.Get("client_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid client_id", err)
			return
		}
		parties, err = h.Store.ListPartiesByClient(ctx, clientID)
	case q.Get("from") != "" || q.Get("to") != "":
		from, to, perr := parseDateRange(q.Get("from"), q.Get("to"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", perr)
			return
		}
		parties, err = h.Store.ListPartiesByEventRange(ctx, from, to)
	default:
		parties, err = h.Store.ListParties(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parties", err)
		return
	}

	dtos := make([]PartyDTO, len(parties))
	for i, p := range parties {
		dtos[i] = toPartyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateParty registers a sale. The contract code is generated from the
// closing date and the client's name, with a numeric suffix on collision.
func (h *Handler) CreateParty(w http.ResponseWriter, r *http.Request) {
	var req CreatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TotalValueCents <= 0 {
		writeError(w, http.StatusBadRequest, "total_value_cents must be positive", nil)
		return
	}

	closing, err := time.Parse("2006-01-02", req.ClosingDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid closing_date format (use YYYY-MM-DD)", err)
		return
	}
	event, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event_date format (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	client, err := h.Store.GetClient(ctx, req.ClientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	code, err := crm.GeneratePartyCode(closing, client.Name, func(c string) (bool, error) {
		return h.Store.PartyCodeExists(ctx, c)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate contract code", err)
		return
	}

	party := receivables.Party{
		Code:            code,
		ClientID:        req.ClientID,
		TotalValueCents: req.TotalValueCents,
		ClosingDate:     closing,
		EventDate:       event,
		GuestCount:      req.GuestCount,
		Theme:           req.Theme,
		TimeSlot:        req.TimeSlot,
		Status:          receivables.PartyScheduled,
		Notes:           req.Notes,
	}

	id, err := h.Store.CreateParty(ctx, party)
	if err != nil {
		if errors.Is(err, sqlite.ErrDuplicateCode) {
			writeError(w, http.StatusConflict, "Contract code already taken", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create party", err)
		return
	}
	party.ID = id

	writeJSON(w, http.StatusCreated, toPartyDTO(party))
}

// GetParty returns a single sale.
func (h *Handler) GetParty(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	party, err := h.Store.GetParty(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get party", err)
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "Party not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPartyDTO(*party))
}

// GetPartyByCode looks a sale up by its contract code.
func (h *Handler) GetPartyByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	party, err := h.Store.GetPartyByCode(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get party", err)
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "Party not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPartyDTO(*party))
}

// UpdateParty updates a sale's contract fields. Paid amounts are managed
// exclusively by the payment endpoints.
func (h *Handler) UpdateParty(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req UpdatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	party, err := h.Store.GetParty(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get party", err)
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "Party not found", nil)
		return
	}

	if req.TotalValueCents > 0 {
		party.TotalValueCents = req.TotalValueCents
	}
	if req.ClosingDate != "" {
		closing, err := time.Parse("2006-01-02", req.ClosingDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid closing_date format (use YYYY-MM-DD)", err)
			return
		}
		party.ClosingDate = closing
	}
	if req.EventDate != "" {
		event, err := time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid event_date format (use YYYY-MM-DD)", err)
			return
		}
		party.EventDate = event
	}
	if req.Status != "" {
		status := receivables.PartyStatus(req.Status)
		switch status {
		case receivables.PartyScheduled, receivables.PartyPerformed, receivables.PartyCanceled:
			party.Status = status
		default:
			writeError(w, http.StatusBadRequest, "Invalid status", nil)
			return
		}
	}
	if req.GuestCount > 0 {
		party.GuestCount = req.GuestCount
	}
	if req.Theme != "" {
		party.Theme = req.Theme
	}
	if req.TimeSlot != "" {
		party.TimeSlot = req.TimeSlot
	}
	if req.Notes != "" {
		party.Notes = req.Notes
	}

	if err := h.Store.UpdateParty(ctx, *party); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update party", err)
		return
	}

	writeJSON(w, http.StatusOK, toPartyDTO(*party))
}

// DeleteParty removes a sale along with its payments.
func (h *Handler) DeleteParty(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	if err := h.Store.DeleteParty(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Party not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete party", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPartyStats returns portfolio-level aggregates.
func (h *Handler) GetPartyStats(w http.ResponseWriter, r *http.Request) {
	parties, err := h.Store.ListParties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parties", err)
		return
	}

	stats := receivables.SalesStats(parties)
	writeJSON(w, http.StatusOK, PartyStatsDTO{
		Total:           stats.Total,
		Scheduled:       stats.Scheduled,
		Performed:       stats.Performed,
		Canceled:        stats.Canceled,
		TotalValueCents: stats.TotalValueCents,
		TotalPaidCents:  stats.TotalPaidCents,
		ReceivableCents: stats.ReceivableCents,
		AverageTicket:   stats.AverageTicket.StringFixed(2),
	})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns a party's payment history.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	payments, err := h.Store.ListPaymentsByParty(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment registers a payment against a party, keeping the party's
// running paid sum in sync.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paidAt := h.now()
	if req.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid_at format (use RFC 3339)", err)
			return
		}
	}

	payment := receivables.Payment{
		PartyID:    id,
		ValueCents: req.ValueCents,
		PaidAt:     paidAt,
		Method:     req.Method,
		Notes:      req.Notes,
	}

	paymentID, err := h.Store.CreatePayment(r.Context(), payment)
	if err != nil {
		switch {
		case errors.Is(err, sqlite.ErrNonPositivePayment):
			writeError(w, http.StatusBadRequest, "Payment value must be positive", err)
		case errors.Is(err, sqlite.ErrNotFound):
			writeError(w, http.StatusNotFound, "Party not found", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create payment", err)
		}
		return
	}
	payment.ID = paymentID

	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// DeletePayment removes a payment and rolls its value out of the party's
// paid sum.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	if err := h.Store.DeletePayment(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Payment not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete payment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPaymentSummary returns a party's paid / balance rollup with the
// percent paid as a decimal string.
func (h *Handler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	ctx := r.Context()
	party, err := h.Store.GetParty(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get party", err)
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "Party not found", nil)
		return
	}

	payments, err := h.Store.ListPaymentsByParty(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	paid := receivables.TotalPaidCents(payments)
	percent := decimal.Zero
	if party.TotalValueCents > 0 {
		percent = decimal.NewFromInt(paid).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(party.TotalValueCents))
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}

	writeJSON(w, http.StatusOK, PaymentSummaryDTO{
		PartyID:         id,
		TotalValueCents: party.TotalValueCents,
		TotalPaidCents:  paid,
		BalanceCents:    party.TotalValueCents - paid,
		PercentPaid:     percent.StringFixed(2),
		Payments:        dtos,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseDateRange parses optional YYYY-MM-DD bounds, defaulting open ends
// to a wide window.
func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	from = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			return from, to, err
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func toPartyDTO(p receivables.Party) PartyDTO {
	dto := PartyDTO{
		ID:              p.ID,
		Code:            p.Code,
		ClientID:        p.ClientID,
		TotalValueCents: p.TotalValueCents,
		PaidCents:       p.PaidCents,
		ClosingDate:     p.ClosingDate.Format("2006-01-02"),
		EventDate:       p.EventDate.Format("2006-01-02"),
		GuestCount:      p.GuestCount,
		Theme:           p.Theme,
		TimeSlot:        p.TimeSlot,
		Status:          string(p.Status),
		Notes:           p.Notes,
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPaymentDTO(p receivables.Payment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		PartyID:    p.PartyID,
		ValueCents: p.ValueCents,
		PaidAt:     p.PaidAt.Format(time.RFC3339),
		Method:     p.Method,
		Notes:      p.Notes,
	}
}
