/*
main.go - Legacy spreadsheet import CLI

PURPOSE:
  One-shot loader for the pre-system contract spreadsheet. Parses the
  export, writes clients, parties and payments into the same SQLite
  database the server uses, and prints a per-row outcome table.

USAGE:
  import --source contracts-json --db ./data/receivables.db contracts.json
  import --source contracts-xlsx --db ./data/receivables.db Proximasfestas.xlsx

SEE ALSO:
  - importer: Parsers and import logic
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/festeja/receivables-engine/importer"
	"github.com/festeja/receivables-engine/logging"
	"github.com/festeja/receivables-engine/store/sqlite"
)

type Params struct {
	Source string `descr:"Export format" alts:"contracts-json,contracts-xlsx" strict:"true"`
	DB     string `descr:"SQLite database path" default:"./data/receivables.db"`
	File   string `descr:"Path to the export file" positional:"true"`
}

func main() {
	boa.NewCmdT[Params]("import").
		WithShort("Import legacy contract spreadsheets").
		WithLong("Loads a legacy contract export (JSON or XLSX) into the receivables database, resolving clients by name and generating contract codes where the export has none.").
		WithRunFunc(func(params *Params) {
			log := logging.Default(logging.ComponentImporter)

			store, err := sqlite.New(params.DB)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
				os.Exit(1)
			}
			defer store.Close()

			imp := importer.New(store, log)
			summary, err := imp.Run(context.Background(), params.Source, params.File)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
				os.Exit(1)
			}

			printSummary(summary)

			if summary.Failed > 0 {
				os.Exit(1)
			}
		}).
		Run()
}

func printSummary(summary importer.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	t.AppendHeader(table.Row{"Row", "Code", "Client", "Result", "Reason"})
	for _, o := range summary.Outcomes {
		t.AppendRow(table.Row{o.Row, o.Code, o.Client, o.Result, o.Reason})
	}
	t.AppendFooter(table.Row{"", "", "", "imported", summary.PartiesCreated})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Printf("\n%d rows: %d parties, %d clients, %d payments created; %d skipped, %d failed\n",
		summary.Rows, summary.PartiesCreated, summary.ClientsCreated,
		summary.PaymentsCreated, summary.Skipped, summary.Failed)
}
