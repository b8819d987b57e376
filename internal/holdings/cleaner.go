package holdings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Column names addressed by the cleaner, after header normalization.
const (
	ColumnAccountName       = "account_name"
	ColumnSymbol            = "symbol"
	ColumnQuantity          = "quantity"
	ColumnLastPrice         = "last_price"
	ColumnCostBasisPerShare = "cost_basis_per_share"
	ColumnCurrentValue      = "current_value"
	ColumnTotalGainDollar   = "total_gain_loss_dollar"
	ColumnTotalGainPercent  = "total_gain_loss_percent"
	ColumnType              = "type"
)

// TypeUnknown is filled into the type column for holdings exported without
// an explicit type, such as 401k positions. Filling it before the missing
// value sweep keeps those rows in the dataset.
const TypeUnknown = "unknown"

var (
	// ErrColumnMissing indicates an expected column was absent from the
	// input. The transformation is column-name-addressed, not positional.
	ErrColumnMissing = errors.New("expected column missing")

	// ErrNotNumeric indicates a currency/percent cell that did not parse
	// as a number after symbol stripping.
	ErrNotNumeric = errors.New("value is not numeric")

	// ErrColumnOrder indicates the expected columns appear in an order the
	// contiguous coercion range cannot be built from.
	ErrColumnOrder = errors.New("unexpected column order")
)

// NormalizeHeader converts a human-readable export header to its canonical
// form: lower case, spaces and slashes replaced by underscores.
// "Today's Gain/Loss Dollar" becomes "today's_gain_loss_dollar".
func NormalizeHeader(header string) string {
	h := strings.ToLower(header)
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "/", "_")
	return h
}

// Clean normalizes a raw brokerage export dataset:
//
//  1. Headers are normalized (see NormalizeHeader).
//  2. Missing entries in the type column are filled with "unknown".
//  3. Any remaining row with a missing value in any column is dropped.
//  4. Every column in the contiguous range last_price through
//     cost_basis_per_share has "$" and "%" stripped and is coerced to a
//     float. An unparseable value is a fatal input-format error, never a
//     silent zero.
//  5. Columns are reordered: quantity through cost_basis_per_share first,
//     then the original leading columns, then the remaining trailing ones.
//
// Clean never mutates raw and is referentially transparent, so results may
// be memoized on the input's content.
func Clean(raw *Dataset) (*Dataset, error) {
	ds := raw.Clone()

	for i, col := range ds.Columns {
		ds.Columns[i] = NormalizeHeader(col)
	}

	typeIdx, err := ds.RequireColumn(ColumnType)
	if err != nil {
		return nil, err
	}
	priceIdx, err := ds.RequireColumn(ColumnLastPrice)
	if err != nil {
		return nil, err
	}
	costIdx, err := ds.RequireColumn(ColumnCostBasisPerShare)
	if err != nil {
		return nil, err
	}
	quantityIdx, err := ds.RequireColumn(ColumnQuantity)
	if err != nil {
		return nil, err
	}
	if quantityIdx > priceIdx || priceIdx > costIdx {
		return nil, fmt.Errorf("%w: want %s <= %s <= %s",
			ErrColumnOrder, ColumnQuantity, ColumnLastPrice, ColumnCostBasisPerShare)
	}

	// Fill the type column first, then sweep for missing values. Order
	// matters: a row whose only gap is its type must survive.
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		if row[typeIdx].IsMissing() {
			row[typeIdx] = TextCell(TypeUnknown)
		}
		missing := false
		for _, cell := range row {
			if cell.IsMissing() {
				missing = true
				break
			}
		}
		if missing {
			continue
		}
		kept = append(kept, row)
	}
	ds.Rows = kept

	for i, row := range ds.Rows {
		for j := priceIdx; j <= costIdx; j++ {
			value, err := parseMoney(row[j])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i, ds.Columns[j], err)
			}
			row[j] = NumberCell(value)
		}
	}

	reorderColumns(ds, quantityIdx, costIdx)
	return ds, nil
}

// parseMoney strips currency and percent formatting from a cell and parses
// the remainder as a number. Thousands separators are accepted; anything
// else non-numeric is an input-format error.
func parseMoney(cell Cell) (float64, error) {
	if cell.Numeric {
		return cell.Number, nil
	}
	s := strings.TrimSpace(cell.Text)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, cell.Text)
	}
	return d.InexactFloat64(), nil
}

// reorderColumns moves the quantity..costBasis range to the front, keeping
// the original leading columns next and the trailing columns last.
func reorderColumns(ds *Dataset, quantityIdx, costIdx int) {
	order := make([]int, 0, len(ds.Columns))
	for i := quantityIdx; i <= costIdx; i++ {
		order = append(order, i)
	}
	for i := 0; i < quantityIdx; i++ {
		order = append(order, i)
	}
	for i := costIdx + 1; i < len(ds.Columns); i++ {
		order = append(order, i)
	}

	columns := make([]string, len(order))
	for to, from := range order {
		columns[to] = ds.Columns[from]
	}
	ds.Columns = columns

	for r, row := range ds.Rows {
		cells := make([]Cell, len(order))
		for to, from := range order {
			cells[to] = row[from]
		}
		ds.Rows[r] = cells
	}
}
