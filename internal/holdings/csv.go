package holdings

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses a brokerage CSV export into a raw dataset of text cells.
// Fidelity exports append disclaimer lines and blank separators below the
// table with fewer fields than the header row; short rows are padded with
// empty cells so the cleaner's missing-value sweep drops them, matching how
// a dataframe load would surface them as nulls.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	// Strip a UTF-8 BOM some exports carry on the first header.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	ds := NewDataset(header)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		row := make([]Cell, len(ds.Columns))
		for i := range row {
			if i < len(record) {
				row[i] = TextCell(record[i])
			} else {
				row[i] = TextCell("")
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	inferNumericColumns(ds)
	return ds, nil
}

// inferNumericColumns promotes columns whose every non-empty cell is a plain
// number to numeric cells, the way a dataframe load types an unformatted
// quantity column. Currency and percent formatted columns stay text; the
// cleaner owns their coercion.
func inferNumericColumns(ds *Dataset) {
	for j := range ds.Columns {
		numeric := false
		for _, row := range ds.Rows {
			cell := row[j]
			if cell.IsMissing() {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64); err != nil {
				numeric = false
				break
			}
			numeric = true
		}
		if !numeric {
			continue
		}
		for _, row := range ds.Rows {
			if row[j].IsMissing() {
				continue
			}
			v, _ := strconv.ParseFloat(strings.TrimSpace(row[j].Text), 64)
			row[j] = NumberCell(v)
		}
	}
}
