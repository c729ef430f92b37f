/*
Package importer loads legacy contract spreadsheets into the record store.

PURPOSE:
  The business kept its sales in a spreadsheet before this system existed.
  This package parses those exports (JSON or XLSX), resolves or creates the
  clients, generates contract codes where the export has none, and reports
  a per-row outcome so a bad row never aborts the whole import.

SOURCES:
  contracts-json:  Array of contract objects (the converted spreadsheet)
  contracts-xlsx:  The spreadsheet itself, header row discovered by name

SEE ALSO:
  - json.go, xlsx.go: The two parsers
  - cmd/import: CLI entry point
*/
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/festeja/receivables-engine/crm"
	"github.com/festeja/receivables-engine/logging"
	"github.com/festeja/receivables-engine/receivables"
	"github.com/festeja/receivables-engine/store/sqlite"
)

// Record is one contract row from a legacy export. Money is integer cents;
// the parsers convert from reais.
type Record struct {
	Row int // 1-based position in the source, for outcome reporting

	Code       string
	ClientName string
	Phone      string

	ClosingDate time.Time
	EventDate   time.Time

	TotalValueCents int64
	PaidCents       int64

	GuestCount int
	Theme      string
	TimeSlot   string
}

// =============================================================================
// PARSER REGISTRY
// =============================================================================

// Parser parses a legacy export into contract records.
type Parser interface {
	Parse(path string) ([]Record, error)
}

// ParserFunc is a function that implements Parser.
type ParserFunc func(path string) ([]Record, error)

func (f ParserFunc) Parse(path string) ([]Record, error) {
	return f(path)
}

var parsers = map[string]Parser{}

// RegisterParser registers a parser under the given source name.
func RegisterParser(name string, p Parser) {
	parsers[name] = p
}

// GetParser returns the parser for the given source type.
func GetParser(source string) (Parser, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", source, AvailableSources())
	}
	return p, nil
}

// AvailableSources lists the registered source types.
func AvailableSources() []string {
	var sources []string
	for name := range parsers {
		sources = append(sources, name)
	}
	return sources
}

// =============================================================================
// IMPORT RUN
// =============================================================================

// Outcome is the result of importing one row.
type Outcome struct {
	Row    int
	Code   string
	Client string
	Result string // "imported", "skipped" or "failed"
	Reason string
}

// Summary aggregates an import run.
type Summary struct {
	Rows            int
	ClientsCreated  int
	PartiesCreated  int
	PaymentsCreated int
	Skipped         int
	Failed          int

	Outcomes []Outcome
}

// Importer loads parsed records into the store.
type Importer struct {
	Store *sqlite.Store
	Log   *logging.Logger

	// now decides imported party status; swappable for tests.
	Now func() time.Time
}

// New creates an importer over the given store.
func New(store *sqlite.Store, log *logging.Logger) *Importer {
	return &Importer{Store: store, Log: log, Now: time.Now}
}

// Run parses the file with the named source parser and imports every row.
// Rows missing a client name or event date are skipped, not failed; the
// whole run only errors when the file itself can't be parsed.
func (imp *Importer) Run(ctx context.Context, source, path string) (Summary, error) {
	parser, err := GetParser(source)
	if err != nil {
		return Summary{}, err
	}

	records, err := parser.Parse(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	summary := Summary{Rows: len(records)}
	clientCache := map[string]int64{}

	for _, rec := range records {
		outcome := imp.importRecord(ctx, rec, clientCache, &summary)
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch outcome.Result {
		case "skipped":
			summary.Skipped++
		case "failed":
			summary.Failed++
		}
	}

	imp.Log.Info("import complete",
		"rows", summary.Rows,
		"clients_created", summary.ClientsCreated,
		"parties_created", summary.PartiesCreated,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

func (imp *Importer) importRecord(ctx context.Context, rec Record, clientCache map[string]int64, summary *Summary) Outcome {
	outcome := Outcome{Row: rec.Row, Code: rec.Code, Client: rec.ClientName}

	if strings.TrimSpace(rec.ClientName) == "" {
		outcome.Result = "skipped"
		outcome.Reason = "missing client name"
		return outcome
	}
	if rec.EventDate.IsZero() {
		outcome.Result = "skipped"
		outcome.Reason = "missing event date"
		return outcome
	}
	if rec.TotalValueCents <= 0 {
		outcome.Result = "skipped"
		outcome.Reason = "missing contract value"
		return outcome
	}

	clientID, created, err := imp.resolveClient(ctx, rec, clientCache)
	if err != nil {
		outcome.Result = "failed"
		outcome.Reason = fmt.Sprintf("client lookup: %v", err)
		return outcome
	}
	if created {
		summary.ClientsCreated++
	}

	closing := rec.ClosingDate
	if closing.IsZero() {
		closing = rec.EventDate
	}

	code := rec.Code
	if code == "" {
		code, err = crm.GeneratePartyCode(closing, rec.ClientName, func(c string) (bool, error) {
			return imp.Store.PartyCodeExists(ctx, c)
		})
		if err != nil {
			outcome.Result = "failed"
			outcome.Reason = fmt.Sprintf("code generation: %v", err)
			return outcome
		}
		outcome.Code = code
	}

	status := receivables.PartyScheduled
	if rec.EventDate.Before(imp.Now()) {
		status = receivables.PartyPerformed
	}

	partyID, err := imp.Store.CreateParty(ctx, receivables.Party{
		Code:            code,
		ClientID:        clientID,
		TotalValueCents: rec.TotalValueCents,
		ClosingDate:     closing,
		EventDate:       rec.EventDate,
		GuestCount:      rec.GuestCount,
		Theme:           rec.Theme,
		TimeSlot:        rec.TimeSlot,
		Status:          status,
	})
	if err != nil {
		if errors.Is(err, sqlite.ErrDuplicateCode) {
			outcome.Result = "skipped"
			outcome.Reason = "contract code already imported"
			return outcome
		}
		outcome.Result = "failed"
		outcome.Reason = fmt.Sprintf("create party: %v", err)
		return outcome
	}
	summary.PartiesCreated++

	if rec.PaidCents > 0 {
		_, err := imp.Store.CreatePayment(ctx, receivables.Payment{
			PartyID:    partyID,
			ValueCents: rec.PaidCents,
			PaidAt:     closing,
			Method:     "importado",
			Notes:      "saldo recebido na planilha",
		})
		if err != nil {
			outcome.Result = "failed"
			outcome.Reason = fmt.Sprintf("create payment: %v", err)
			return outcome
		}
		summary.PaymentsCreated++
	}

	outcome.Result = "imported"
	return outcome
}

// resolveClient finds an existing client by name (case-insensitive) or
// creates one. The cache spares repeated lookups for multi-party clients.
func (imp *Importer) resolveClient(ctx context.Context, rec Record, cache map[string]int64) (id int64, created bool, err error) {
	key := strings.ToLower(strings.TrimSpace(rec.ClientName))
	if id, ok := cache[key]; ok {
		return id, false, nil
	}

	matches, err := imp.Store.SearchClients(ctx, rec.ClientName)
	if err != nil {
		return 0, false, err
	}
	for _, c := range matches {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(rec.ClientName)) {
			cache[key] = c.ID
			return c.ID, false, nil
		}
	}

	id, err = imp.Store.CreateClient(ctx, crm.Client{
		Name:   strings.TrimSpace(rec.ClientName),
		Phone:  digitsOnly(rec.Phone),
		Origin: "planilha",
	})
	if err != nil {
		return 0, false, err
	}
	cache[key] = id
	return id, true, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
