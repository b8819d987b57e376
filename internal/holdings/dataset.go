package holdings

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is a single value in a Dataset. A cell is either free text or a
// number; cleaned currency/percent columns hold numeric cells.
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
}

// TextCell creates a text cell.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell creates a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Number: f, Numeric: true}
}

// IsMissing reports whether the cell holds no usable value. Raw brokerage
// exports signal missing fields as empty or whitespace-only strings.
func (c Cell) IsMissing() bool {
	return !c.Numeric && strings.TrimSpace(c.Text) == ""
}

// String renders the cell for display and CSV export. Numbers use the
// shortest representation that round-trips.
func (c Cell) String() string {
	if c.Numeric {
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return c.Text
}

// Dataset is an ordered, column-addressed table of holdings data.
// Column order is significant: the cleaner's currency/percent coercion is
// defined over a contiguous header range, and the cleaned column order is
// part of the output contract.
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// NewDataset creates an empty dataset with the given column headers.
func NewDataset(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// RequireColumn returns the position of the named column or an error naming
// the missing column. The cleaner and filter are column-name-addressed, so a
// missing expected column is a fatal input-format error.
func (d *Dataset) RequireColumn(name string) (int, error) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrColumnMissing, name)
	}
	return idx, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Cell returns the cell at the given row for the named column.
func (d *Dataset) Cell(row int, column string) (Cell, error) {
	idx, err := d.RequireColumn(column)
	if err != nil {
		return Cell{}, err
	}
	if row < 0 || row >= len(d.Rows) {
		return Cell{}, fmt.Errorf("row %d out of range (%d rows)", row, len(d.Rows))
	}
	return d.Rows[row][idx], nil
}

// Distinct returns the distinct values of the named column in order of
// first appearance.
func (d *Dataset) Distinct(column string) ([]string, error) {
	idx, err := d.RequireColumn(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(d.Rows))
	var values []string
	for _, row := range d.Rows {
		v := row[idx].String()
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// Clone returns a deep copy. Pipeline stages never mutate their input, so
// callers that want to modify a dataset clone it first.
func (d *Dataset) Clone() *Dataset {
	clone := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([][]Cell, len(d.Rows)),
	}
	for i, row := range d.Rows {
		clone.Rows[i] = append([]Cell(nil), row...)
	}
	return clone
}

// Records renders every row as strings in column order, ready for CSV or
// spreadsheet export.
func (d *Dataset) Records() [][]string {
	records := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = cell.String()
		}
		records[i] = record
	}
	return records
}
