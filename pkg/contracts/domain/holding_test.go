package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
)

const sampleCSV = `Account Name,Symbol,Description,Quantity,Last Price,Last Price Change,Current Value,Today's Gain/Loss Dollar,Today's Gain/Loss Percent,Total Gain/Loss Dollar,Total Gain/Loss Percent,Percent Of Account,Cost Basis Total,Cost Basis Per Share,Type
Brokerage,AAPL,APPLE INC,10,$150.00,$1.50,$1500.00,$15.00,1.01%,$500.00,50.00%,75.00%,$1000.00,$100.00,Cash
Retirement,VTI,VANGUARD TOTAL,5,$200.00,-$2.00,$1000.00,-$10.00,-0.99%,$250.00,33.33%,25.00%,$750.00,$150.00,
`

func cleanedSample(t *testing.T) *holdings.Dataset {
	t.Helper()
	raw, err := holdings.ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	clean, err := holdings.Clean(raw)
	require.NoError(t, err)
	return clean
}

func TestHoldingsFromDataset(t *testing.T) {
	list, err := HoldingsFromDataset(cleanedSample(t))
	require.NoError(t, err)
	require.Len(t, list, 2)

	apple := list[0]
	assert.Equal(t, "Brokerage", apple.AccountName)
	assert.Equal(t, "AAPL", apple.Symbol)
	assert.Equal(t, "APPLE INC", apple.Description)
	assert.InDelta(t, 10.0, apple.Quantity, 1e-9)
	assert.InDelta(t, 150.0, apple.LastPrice, 1e-9)
	assert.InDelta(t, 1500.0, apple.CurrentValue, 1e-9)
	assert.InDelta(t, 500.0, apple.TotalGainLossDollar, 1e-9)
	assert.InDelta(t, 100.0, apple.CostBasisPerShare, 1e-9)
	assert.Equal(t, "Cash", apple.Type)

	vti := list[1]
	assert.InDelta(t, -2.0, vti.LastPriceChange, 1e-9)
	assert.Equal(t, holdings.TypeUnknown, vti.Type)
}

func TestHoldingsFromDatasetRequiresCoreColumns(t *testing.T) {
	ds := holdings.NewDataset([]string{"quantity", "type"})
	_, err := HoldingsFromDataset(ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, holdings.ErrColumnMissing)
}

func TestSummaryFromDataset(t *testing.T) {
	clean := cleanedSample(t)
	summary, err := holdings.SummarizeByAccount(clean)
	require.NoError(t, err)

	got, err := SummaryFromDataset(summary)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 2)

	assert.Equal(t, "Brokerage", got.Accounts[0].AccountName)
	assert.InDelta(t, 1500.0, got.Accounts[0].CurrentValue, 1e-9)
	assert.InDelta(t, 500.0, got.Accounts[0].TotalGainLossDollar, 1e-9)

	require.NotNil(t, got.Total, "grand total present when more than one account")
	assert.InDelta(t, 2500.0, got.Total.CurrentValue, 1e-9)
	assert.InDelta(t, 750.0, got.Total.TotalGainLossDollar, 1e-9)
}

func TestSummaryFromDatasetSingleAccountOmitsTotal(t *testing.T) {
	clean := cleanedSample(t)
	filtered, err := holdings.Filter(clean, holdings.Selection{
		Accounts: []string{"Brokerage"},
		Symbols:  []string{"AAPL"},
	})
	require.NoError(t, err)
	summary, err := holdings.SummarizeByAccount(filtered)
	require.NoError(t, err)

	got, err := SummaryFromDataset(summary)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 1)
	assert.Nil(t, got.Total)
}
