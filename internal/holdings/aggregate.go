package holdings

import (
	"github.com/shopspring/decimal"
)

// SummarizeByAccount groups a cleaned dataset by account name and sums every
// numeric column within each group, producing one summary row per account in
// order of first appearance. Non-numeric columns other than the account name
// are left empty in the summary rows.
//
// Percent columns are summed like every other numeric column. An unweighted
// sum of percentages is not the portfolio's aggregate percentage change, but
// it is the established behavior of this dashboard and is kept as is.
func SummarizeByAccount(ds *Dataset) (*Dataset, error) {
	return summarizeBy(ds, ColumnAccountName)
}

// SummarizeBySymbol groups by symbol instead of account, merging a symbol
// held across several accounts into one row. It backs the per-symbol charts.
func SummarizeBySymbol(ds *Dataset) (*Dataset, error) {
	return summarizeBy(ds, ColumnSymbol)
}

func summarizeBy(ds *Dataset, keyColumn string) (*Dataset, error) {
	keyIdx, err := ds.RequireColumn(keyColumn)
	if err != nil {
		return nil, err
	}

	type group struct {
		row    int
		totals []decimal.Decimal
	}

	out := NewDataset(ds.Columns)
	groups := make(map[string]*group)
	for _, row := range ds.Rows {
		key := row[keyIdx].String()
		g, ok := groups[key]
		if !ok {
			summary := make([]Cell, len(row))
			for j := range summary {
				summary[j] = TextCell("")
			}
			summary[keyIdx] = TextCell(key)
			out.Rows = append(out.Rows, summary)
			g = &group{row: len(out.Rows) - 1, totals: make([]decimal.Decimal, len(row))}
			groups[key] = g
		}
		for j, cell := range row {
			if !cell.Numeric {
				continue
			}
			g.totals[j] = g.totals[j].Add(decimal.NewFromFloat(cell.Number))
			out.Rows[g.row][j] = NumberCell(g.totals[j].InexactFloat64())
		}
	}
	return out, nil
}

// GrandTotal sums current value and total gain/loss dollars across every row
// of an account summary. It backs the "total of all accounts" metric shown
// when more than one account is selected.
func GrandTotal(summary *Dataset) (currentValue, totalGainLoss float64, err error) {
	valueIdx, err := summary.RequireColumn(ColumnCurrentValue)
	if err != nil {
		return 0, 0, err
	}
	gainIdx, err := summary.RequireColumn(ColumnTotalGainDollar)
	if err != nil {
		return 0, 0, err
	}

	value := decimal.Zero
	gain := decimal.Zero
	for _, row := range summary.Rows {
		if row[valueIdx].Numeric {
			value = value.Add(decimal.NewFromFloat(row[valueIdx].Number))
		}
		if row[gainIdx].Numeric {
			gain = gain.Add(decimal.NewFromFloat(row[gainIdx].Number))
		}
	}
	return value.InexactFloat64(), gain.InexactFloat64(), nil
}
