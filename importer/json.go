/*
json.go - contracts-json parser

PURPOSE:
  Parses the JSON conversion of the legacy spreadsheet: an array of
  contract objects with reais values and loosely formatted dates. The
  converter wrote "nan" for empty spreadsheet cells, so that string is
  treated as absent everywhere.
*/
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// contractJSON mirrors the converted spreadsheet row.
type contractJSON struct {
	Codigo         string  `json:"codigo"`
	Cliente        string  `json:"cliente"`
	Telefone       string  `json:"telefone"`
	DataFechamento string  `json:"data_fechamento"`
	DataFesta      string  `json:"data_festa"`
	ValorFesta     float64 `json:"valor_festa"`
	ValorRecebido  float64 `json:"valor_recebido"`
	Convidados     int     `json:"convidados"`
	Tema           string  `json:"tema"`
	Periodo        string  `json:"periodo"`
}

// ParseContractsJSON parses a contracts-json export.
func ParseContractsJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var rows []contractJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, Record{
			Row:             i + 1,
			Code:            cleanCell(row.Codigo),
			ClientName:      cleanCell(row.Cliente),
			Phone:           cleanCell(row.Telefone),
			ClosingDate:     parseLooseDate(row.DataFechamento),
			EventDate:       parseLooseDate(row.DataFesta),
			TotalValueCents: reaisFloatToCents(row.ValorFesta),
			PaidCents:       reaisFloatToCents(row.ValorRecebido),
			GuestCount:      row.Convidados,
			Theme:           cleanCell(row.Tema),
			TimeSlot:        cleanCell(row.Periodo),
		})
	}
	return records, nil
}

// cleanCell trims a spreadsheet cell and drops the converter's "nan".
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// parseLooseDate accepts the converter's "2006-01-02 15:04:05" as well as
// plain dates; unparseable cells come back zero.
func parseLooseDate(s string) time.Time {
	s = cleanCell(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// reaisFloatToCents converts a reais float to integer cents, rounding
// half away from zero like the original importer.
func reaisFloatToCents(reais float64) int64 {
	return decimal.NewFromFloat(reais).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func init() {
	RegisterParser("contracts-json", ParserFunc(ParseContractsJSON))
}
