// Command holdingscsv cleans a brokerage positions export from disk and
// prints the per-account summary. It can also write the cleaned dataset
// back out as CSV or as an Excel workbook.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gerardrbentley/fidelity-account-overview/internal/exporter"
	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
	"github.com/gerardrbentley/fidelity-account-overview/web"
)

func main() {
	in := flag.String("in", "", "input csv file path (defaults to the bundled example)")
	outCSV := flag.String("out-csv", "", "write the cleaned dataset to this csv path")
	outXLSX := flag.String("out-xlsx", "", "write the cleaned dataset and summary to this xlsx path")
	accounts := flag.String("accounts", "", "comma separated account filter (defaults to all)")
	symbols := flag.String("symbols", "", "comma separated symbol filter (defaults to all)")
	flag.Parse()

	if err := run(*in, *outCSV, *outXLSX, *accounts, *symbols); err != nil {
		fmt.Fprintln(os.Stderr, "holdingscsv:", err)
		os.Exit(1)
	}
}

func run(in, outCSV, outXLSX, accountFilter, symbolFilter string) error {
	var raw *holdings.Dataset
	var err error
	if in == "" {
		raw, err = holdings.ReadCSV(bytes.NewReader(web.ExampleCSV()))
	} else {
		var file *os.File
		file, err = os.Open(in)
		if err != nil {
			return err
		}
		defer file.Close()
		raw, err = holdings.ReadCSV(file)
	}
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	cleaned, err := holdings.Clean(raw)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	selection, err := buildSelection(cleaned, accountFilter, symbolFilter)
	if err != nil {
		return err
	}
	filtered, err := holdings.Filter(cleaned, selection)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	summary, err := holdings.SummarizeByAccount(filtered)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	if err := printSummary(summary); err != nil {
		return err
	}

	if outCSV != "" {
		if err := exporter.WriteCSVFile(outCSV, filtered, exporter.CSVOptions{BOMPrefix: true}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("wrote %s\n", outCSV)
	}
	if outXLSX != "" {
		if err := exporter.WriteExcelFile(outXLSX, filtered, summary); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Printf("wrote %s\n", outXLSX)
	}
	return nil
}

func buildSelection(cleaned *holdings.Dataset, accountFilter, symbolFilter string) (holdings.Selection, error) {
	sel := holdings.Selection{}
	var err error

	if accountFilter != "" {
		sel.Accounts = splitList(accountFilter)
	} else if sel.Accounts, err = cleaned.Distinct(holdings.ColumnAccountName); err != nil {
		return sel, err
	}

	if symbolFilter != "" {
		sel.Symbols = splitList(symbolFilter)
	} else if sel.Symbols, err = cleaned.Distinct(holdings.ColumnSymbol); err != nil {
		return sel, err
	}
	return sel, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printSummary(summary *holdings.Dataset) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tCURRENT VALUE\tTOTAL GAIN/LOSS")

	for row := 0; row < summary.Len(); row++ {
		account, err := summary.Cell(row, holdings.ColumnAccountName)
		if err != nil {
			return err
		}
		value, err := summary.Cell(row, holdings.ColumnCurrentValue)
		if err != nil {
			return err
		}
		gain, err := summary.Cell(row, holdings.ColumnTotalGainDollar)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t$%.2f\t$%.2f\n", account.Text, value.Number, gain.Number)
	}

	if summary.Len() > 1 {
		value, gain, err := holdings.GrandTotal(summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "TOTAL\t$%.2f\t$%.2f\n", value, gain)
	}
	return w.Flush()
}
