package holdings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawDataset builds a compact raw export: the cleaner is column-name
// addressed, so tests do not need the full Fidelity header vocabulary.
func rawDataset(rows ...[]string) *Dataset {
	ds := NewDataset([]string{
		"Account Name", "Symbol", "Quantity", "Last Price", "Current Value", "Cost Basis Per Share", "Type",
	})
	for _, r := range rows {
		cells := make([]Cell, len(r))
		for i, v := range r {
			cells[i] = TextCell(v)
		}
		ds.Rows = append(ds.Rows, cells)
	}
	return ds
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Account Name", "account_name"},
		{"Today's Gain/Loss Dollar", "today's_gain_loss_dollar"},
		{"Total Gain/Loss Percent", "total_gain_loss_percent"},
		{"Symbol", "symbol"},
		{"Cost Basis Per Share", "cost_basis_per_share"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.header))
	}
}

func TestCleanNormalizesHeadersAndReordersColumns(t *testing.T) {
	clean, err := Clean(rawDataset(
		[]string{"Retirement", "AAA", "1", "$10.00", "$10.00", "$8.00", "Cash"},
	))
	require.NoError(t, err)

	// quantity..cost_basis_per_share first, then the original leading
	// columns, then the trailing ones.
	assert.Equal(t, []string{
		"quantity", "last_price", "current_value", "cost_basis_per_share",
		"account_name", "symbol", "type",
	}, clean.Columns)
	require.Len(t, clean.Rows, 1)
	assert.Equal(t, "Retirement", clean.Rows[0][4].String())
	assert.Equal(t, "AAA", clean.Rows[0][5].String())
}

func TestCleanCoercesCurrencyAndPercentStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{"dollar sign", "$10.00", 10.0},
		{"thousands separator", "$1,234.56", 1234.56},
		{"percent sign", "12.5%", 12.5},
		{"negative currency", "-$3.50", -3.5},
		{"already unformatted", "1234.56", 1234.56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, err := Clean(rawDataset(
				[]string{"Brokerage", "AAA", "1", tt.value, "$1.00", "$1.00", "Cash"},
			))
			require.NoError(t, err)
			require.Len(t, clean.Rows, 1)

			cell, err := clean.Cell(0, ColumnLastPrice)
			require.NoError(t, err)
			assert.True(t, cell.Numeric)
			assert.InDelta(t, tt.want, cell.Number, 1e-9)
		})
	}
}

func TestCleanFillsMissingTypeWithUnknown(t *testing.T) {
	clean, err := Clean(rawDataset(
		[]string{"401k", "BBB", "2", "$5.00", "$10.00", "$4.00", ""},
	))
	require.NoError(t, err)

	require.Len(t, clean.Rows, 1, "row missing only its type must survive")
	cell, err := clean.Cell(0, ColumnType)
	require.NoError(t, err)
	assert.Equal(t, TypeUnknown, cell.String())
}

func TestCleanDropsRowsWithMissingValues(t *testing.T) {
	clean, err := Clean(rawDataset(
		[]string{"Brokerage", "AAA", "1", "$10.00", "$10.00", "$8.00", "Cash"},
		[]string{"Brokerage", "", "1", "$10.00", "$10.00", "$8.00", "Cash"},
		[]string{"", "", "", "", "", "", ""},
		[]string{"Brokerage", "CCC", "3", "$2.00", "$6.00", "$1.00", "Margin"},
	))
	require.NoError(t, err)

	require.Len(t, clean.Rows, 2)
	first, err := clean.Cell(0, ColumnSymbol)
	require.NoError(t, err)
	second, err := clean.Cell(1, ColumnSymbol)
	require.NoError(t, err)
	assert.Equal(t, "AAA", first.String())
	assert.Equal(t, "CCC", second.String())
}

func TestCleanRejectsNonNumericCurrencyValues(t *testing.T) {
	_, err := Clean(rawDataset(
		[]string{"Brokerage", "AAA", "1", "$10.00", "n/a", "$8.00", "Cash"},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestCleanRequiresAddressedColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"no type", []string{"Account Name", "Symbol", "Quantity", "Last Price", "Cost Basis Per Share"}},
		{"no last price", []string{"Account Name", "Symbol", "Quantity", "Cost Basis Per Share", "Type"}},
		{"no cost basis per share", []string{"Account Name", "Symbol", "Quantity", "Last Price", "Type"}},
		{"no quantity", []string{"Account Name", "Symbol", "Last Price", "Cost Basis Per Share", "Type"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := NewDataset(tt.columns)
			row := make([]Cell, len(tt.columns))
			for i := range row {
				row[i] = TextCell("x")
			}
			ds.Rows = append(ds.Rows, row)

			_, err := Clean(ds)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrColumnMissing)
		})
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	raw := rawDataset(
		[]string{"Brokerage", "AAA", "1", "$10.00", "$10.00", "$8.00", ""},
	)

	first, err := Clean(raw)
	require.NoError(t, err)
	second, err := Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, "Account Name", raw.Columns[0], "input headers untouched")
	assert.Equal(t, "$10.00", raw.Rows[0][3].Text, "input cells untouched")
	assert.Equal(t, first, second, "same input yields same output")
}
