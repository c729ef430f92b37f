/*
xlsx.go - contracts-xlsx parser

PURPOSE:
  Reads the legacy spreadsheet directly. The header row is discovered by
  column name rather than assumed at row 1, because the sheet carries a
  title banner above the table. Values are reais with comma decimals.

EXPECTED COLUMNS (matched case-insensitively, accents ignored):
  Codigo, Cliente, Telefone, Fechamento, Data Festa, Valor, Recebido,
  Convidados, Tema, Periodo
*/
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ParseContractsXLSX parses a contracts-xlsx export.
func ParseContractsXLSX(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	cols := map[string]int{}
	dataStartRow := -1
	for i, row := range rows {
		for j, cell := range row {
			switch normalizeHeader(cell) {
			case "codigo":
				cols["code"] = j
			case "cliente":
				cols["client"] = j
			case "telefone":
				cols["phone"] = j
			case "fechamento", "data fechamento":
				cols["closing"] = j
			case "data festa", "festa":
				cols["event"] = j
			case "valor", "valor festa":
				cols["value"] = j
			case "recebido", "valor recebido":
				cols["paid"] = j
			case "convidados":
				cols["guests"] = j
			case "tema":
				cols["theme"] = j
			case "periodo":
				cols["slot"] = j
			}
		}
		if hasAll(cols, "client", "event", "value") {
			dataStartRow = i + 1
			break
		}
	}
	if dataStartRow < 0 {
		return nil, fmt.Errorf("could not find required columns (Cliente, Data Festa, Valor)")
	}

	var records []Record
	for i := dataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rec := Record{
			Row:             i + 1,
			Code:            cell(row, cols, "code"),
			ClientName:      cell(row, cols, "client"),
			Phone:           cell(row, cols, "phone"),
			ClosingDate:     parseLooseDate(cell(row, cols, "closing")),
			EventDate:       parseLooseDate(cell(row, cols, "event")),
			TotalValueCents: reaisStringToCents(cell(row, cols, "value")),
			PaidCents:       reaisStringToCents(cell(row, cols, "paid")),
			Theme:           cell(row, cols, "theme"),
			TimeSlot:        cell(row, cols, "slot"),
		}
		if g := cell(row, cols, "guests"); g != "" {
			if n, err := strconv.Atoi(g); err == nil {
				rec.GuestCount = n
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func hasAll(cols map[string]int, names ...string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}
	return true
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader lowercases a header cell and strips the accents the
// spreadsheet uses (Código, Período).
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(
		"á", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ç", "c",
	)
	return replacer.Replace(s)
}

// reaisStringToCents converts "1.234,56" style reais to integer cents.
// Unparseable cells come back zero; the importer skips those rows.
func reaisStringToCents(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func init() {
	RegisterParser("contracts-xlsx", ParserFunc(ParseContractsXLSX))
}
