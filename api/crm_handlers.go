/*
crm_handlers.go - HTTP handlers for clients, visits and costs

PURPOSE:
  The sales-side endpoints: funnel management, public visit booking and
  the cost tables feeding margin calculations.

ENDPOINTS:
  Clients:
    GET    /api/clients                 List (optional ?q= search)
    POST   /api/clients                 Create (defaults: organico / novo)
    GET    /api/clients/{id}            Get one client
    GET    /api/clients/{id}/parties    Client plus their sales
    PUT    /api/clients/{id}            Update
    PUT    /api/clients/{id}/funnel     Move through the funnel
    DELETE /api/clients/{id}            Delete (409 if parties exist)

  Visits:
    GET    /api/visits                  List bookings
    POST   /api/visits                  Book (409 on slot conflict)
    GET    /api/visits/busy             Occupied slots in ?from=&to=
    PUT    /api/visits/{id}/status      Update booking status

  Costs:
    GET/POST       /api/costs/variable        List (?active=true) / create
    PUT/DELETE     /api/costs/variable/{id}
    GET/POST       /api/costs/fixed           List (?active=true) / create
    PUT/DELETE     /api/costs/fixed/{id}
    GET            /api/costs/margin?value_cents=  Margin for a contract value

SEE ALSO:
  - handlers.go: Party and payment handlers, shared helpers
  - crm: Funnel, visit and cost domain types
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/festeja/receivables-engine/crm"
	"github.com/festeja/receivables-engine/store/sqlite"
)

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns clients, filtered by the q search term when present.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		clients []crm.Client
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		clients, err = h.Store.SearchClients(ctx, q)
	} else {
		clients, err = h.Store.ListClients(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateClient registers a lead.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.FunnelStatus != "" && !crm.ValidFunnelStatus(crm.FunnelStatus(req.FunnelStatus)) {
		writeError(w, http.StatusBadRequest, "Invalid funnel_status", nil)
		return
	}

	client := crm.Client{
		Name:                req.Name,
		Phone:               req.Phone,
		Email:               req.Email,
		Origin:              req.Origin,
		FunnelStatus:        crm.FunnelStatus(req.FunnelStatus),
		PotentialValueCents: req.PotentialValueCents,
		Notes:               req.Notes,
	}

	id, err := h.Store.CreateClient(r.Context(), client)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create client", err)
		return
	}

	created, err := h.Store.GetClient(r.Context(), id)
	if err != nil || created == nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(*created))
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// GetClientWithParties returns a client and every sale registered to them.
func (h *Handler) GetClientWithParties(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	ctx := r.Context()
	client, err := h.Store.GetClient(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	parties, err := h.Store.ListPartiesByClient(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parties", err)
		return
	}

	partyDTOs := make([]PartyDTO, len(parties))
	for i, p := range parties {
		partyDTOs[i] = toPartyDTO(p)
	}
	writeJSON(w, http.StatusOK, ClientWithPartiesDTO{
		Client:  toClientDTO(*client),
		Parties: partyDTOs,
	})
}

// UpdateClient overwrites a client's details.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	client, err := h.Store.GetClient(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Origin != "" {
		client.Origin = req.Origin
	}
	if req.FunnelStatus != "" {
		status := crm.FunnelStatus(req.FunnelStatus)
		if !crm.ValidFunnelStatus(status) {
			writeError(w, http.StatusBadRequest, "Invalid funnel_status", nil)
			return
		}
		client.FunnelStatus = status
	}
	if req.PotentialValueCents > 0 {
		client.PotentialValueCents = req.PotentialValueCents
	}
	if req.Notes != "" {
		client.Notes = req.Notes
	}

	if err := h.Store.UpdateClient(ctx, *client); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// UpdateClientFunnel moves a client to another funnel stage.
func (h *Handler) UpdateClientFunnel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req UpdateFunnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := crm.FunnelStatus(req.FunnelStatus)
	if !crm.ValidFunnelStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid funnel_status", nil)
		return
	}

	if err := h.Store.UpdateClientFunnel(r.Context(), id, status); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Client not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update funnel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteClient removes a client without registered parties.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	if err := h.Store.DeleteClient(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, sqlite.ErrClientHasParties):
			writeError(w, http.StatusConflict, "Client has registered parties", err)
		case errors.Is(err, sqlite.ErrNotFound):
			writeError(w, http.StatusNotFound, "Client not found", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to delete client", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VISIT HANDLERS
// =============================================================================

// ListVisits returns every booking, newest first.
func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.Store.ListVisits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list visits", err)
		return
	}

	dtos := make([]VisitDTO, len(visits))
	for i, v := range visits {
		dtos[i] = toVisitDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateVisit books a venue tour. Public endpoint; conflicts return 409.
func (h *Handler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var req CreateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ClientName == "" || req.ClientPhone == "" {
		writeError(w, http.StatusBadRequest, "client_name and client_phone are required", nil)
		return
	}

	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scheduled_at format (use RFC 3339)", err)
		return
	}

	visit := crm.Visit{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ScheduledAt: at,
		EventType:   req.EventType,
		Status:      crm.VisitScheduled,
		Notes:       req.Notes,
	}

	id, err := h.Store.CreateVisit(r.Context(), visit)
	if err != nil {
		if errors.Is(err, sqlite.ErrSlotTaken) {
			writeError(w, http.StatusConflict, "Time slot unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create visit", err)
		return
	}
	visit.ID = id

	writeJSON(w, http.StatusCreated, toVisitDTO(visit))
}

// ListBusySlots returns the occupied instants in the requested window, for
// the public calendar.
func (h *Handler) ListBusySlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseDateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
		return
	}

	slots, err := h.Store.ListBusySlots(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list busy slots", err)
		return
	}

	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateVisitStatus moves a booking through its lifecycle.
func (h *Handler) UpdateVisitStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req UpdateVisitStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := crm.VisitStatus(req.Status)
	if !crm.ValidVisitStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status", nil)
		return
	}

	if err := h.Store.UpdateVisitStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Visit not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update visit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COST HANDLERS
// =============================================================================

// ListVariableCosts returns the variable-cost table, ?active=true for the
// live entries only.
func (h *Handler) ListVariableCosts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	costs, err := h.Store.ListVariableCosts(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list variable costs", err)
		return
	}

	dtos := make([]VariableCostDTO, len(costs))
	for i, c := range costs {
		dtos[i] = toVariableCostDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateVariableCost adds a variable-cost entry.
func (h *Handler) CreateVariableCost(w http.ResponseWriter, r *http.Request) {
	var req VariableCostDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required", nil)
		return
	}
	if req.Percent < 0 || req.Percent > 100 {
		writeError(w, http.StatusBadRequest, "percent must be between 0 and 100", nil)
		return
	}

	cost := crm.VariableCost{
		Description: req.Description,
		ValueCents:  req.ValueCents,
		Percent:     req.Percent,
		Active:      req.Active,
		Order:       req.Order,
	}
	id, err := h.Store.CreateVariableCost(r.Context(), cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create variable cost", err)
		return
	}
	cost.ID = id

	writeJSON(w, http.StatusCreated, toVariableCostDTO(cost))
}

// UpdateVariableCost overwrites a variable-cost entry.
func (h *Handler) UpdateVariableCost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req VariableCostDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cost := crm.VariableCost{
		ID:          id,
		Description: req.Description,
		ValueCents:  req.ValueCents,
		Percent:     req.Percent,
		Active:      req.Active,
		Order:       req.Order,
	}
	if err := h.Store.UpdateVariableCost(r.Context(), cost); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Variable cost not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update variable cost", err)
		return
	}
	writeJSON(w, http.StatusOK, toVariableCostDTO(cost))
}

// DeleteVariableCost removes a variable-cost entry.
func (h *Handler) DeleteVariableCost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	if err := h.Store.DeleteVariableCost(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Variable cost not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete variable cost", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFixedCosts returns the fixed-cost table.
func (h *Handler) ListFixedCosts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	costs, err := h.Store.ListFixedCosts(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list fixed costs", err)
		return
	}

	dtos := make([]FixedCostDTO, len(costs))
	for i, c := range costs {
		dtos[i] = toFixedCostDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateFixedCost adds a monthly overhead entry.
func (h *Handler) CreateFixedCost(w http.ResponseWriter, r *http.Request) {
	var req FixedCostDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required", nil)
		return
	}

	refMonth, err := time.Parse("2006-01-02", req.ReferenceMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference_month format (use YYYY-MM-DD)", err)
		return
	}

	cost := crm.FixedCost{
		Description:    req.Description,
		ValueCents:     req.ValueCents,
		ReferenceMonth: refMonth,
		Active:         req.Active,
		Order:          req.Order,
	}
	id, err := h.Store.CreateFixedCost(r.Context(), cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create fixed cost", err)
		return
	}
	cost.ID = id

	writeJSON(w, http.StatusCreated, toFixedCostDTO(cost))
}

// UpdateFixedCost overwrites a fixed-cost entry.
func (h *Handler) UpdateFixedCost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	var req FixedCostDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	refMonth, err := time.Parse("2006-01-02", req.ReferenceMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference_month format (use YYYY-MM-DD)", err)
		return
	}

	cost := crm.FixedCost{
		ID:             id,
		Description:    req.Description,
		ValueCents:     req.ValueCents,
		ReferenceMonth: refMonth,
		Active:         req.Active,
		Order:          req.Order,
	}
	if err := h.Store.UpdateFixedCost(r.Context(), cost); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fixed cost not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update fixed cost", err)
		return
	}
	writeJSON(w, http.StatusOK, toFixedCostDTO(cost))
}

// DeleteFixedCost removes a fixed-cost entry.
func (h *Handler) DeleteFixedCost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	if err := h.Store.DeleteFixedCost(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fixed cost not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete fixed cost", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMargin computes the gross margin of a contract value against the
// active variable costs, plus the active fixed-cost total for context.
func (h *Handler) GetMargin(w http.ResponseWriter, r *http.Request) {
	valueCents, err := strconv.ParseInt(r.URL.Query().Get("value_cents"), 10, 64)
	if err != nil || valueCents < 0 {
		writeError(w, http.StatusBadRequest, "value_cents must be a non-negative integer", err)
		return
	}

	ctx := r.Context()
	variable, err := h.Store.ListVariableCosts(ctx, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list variable costs", err)
		return
	}
	fixed, err := h.Store.ListFixedCosts(ctx, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list fixed costs", err)
		return
	}

	margin := crm.ProfitMargin(variable, valueCents)
	writeJSON(w, http.StatusOK, MarginDTO{
		ValueCents:        valueCents,
		VariableCostCents: margin.VariableCostCents,
		FixedCostCents:    crm.TotalFixedCostCents(fixed),
		GrossMarginCents:  margin.GrossMarginCents,
		MarginPercent:     margin.MarginPercent.StringFixed(2),
	})
}

// =============================================================================
// DTO CONVERSIONS
// =============================================================================

func toClientDTO(c crm.Client) ClientDTO {
	dto := ClientDTO{
		ID:                  c.ID,
		Name:                c.Name,
		Phone:               c.Phone,
		Email:               c.Email,
		Origin:              c.Origin,
		FunnelStatus:        string(c.FunnelStatus),
		PotentialValueCents: c.PotentialValueCents,
		Notes:               c.Notes,
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toVisitDTO(v crm.Visit) VisitDTO {
	return VisitDTO{
		ID:          v.ID,
		ClientName:  v.ClientName,
		ClientPhone: v.ClientPhone,
		ScheduledAt: v.ScheduledAt.Format(time.RFC3339),
		EventType:   v.EventType,
		Status:      string(v.Status),
		Notes:       v.Notes,
	}
}

func toVariableCostDTO(c crm.VariableCost) VariableCostDTO {
	return VariableCostDTO{
		ID:          c.ID,
		Description: c.Description,
		ValueCents:  c.ValueCents,
		Percent:     c.Percent,
		Active:      c.Active,
		Order:       c.Order,
	}
}

func toFixedCostDTO(c crm.FixedCost) FixedCostDTO {
	return FixedCostDTO{
		ID:             c.ID,
		Description:    c.Description,
		ValueCents:     c.ValueCents,
		ReferenceMonth: c.ReferenceMonth.Format("2006-01-02"),
		Active:         c.Active,
		Order:          c.Order,
	}
}
