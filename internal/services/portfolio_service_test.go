package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerardrbentley/fidelity-account-overview/internal/config"
	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
	ws "github.com/gerardrbentley/fidelity-account-overview/internal/websocket"
)

const sampleCSV = `Account Name,Symbol,Quantity,Last Price,Current Value,Total Gain/Loss Dollar,Total Gain/Loss Percent,Cost Basis Per Share,Type
Brokerage,AAPL,10,$150.00,"$1,500.00",$500.00,50.00%,$100.00,Stock
Brokerage,VTI,2,$220.00,$440.00,$40.00,10.00%,$200.00,
Roth IRA,VTI,5,$220.00,"$1,100.00",$50.00,4.76%,$210.00,ETF
Roth IRA,SPAXX,100,$1.00,$100.00,$0.00,0.00%,$1.00,Money Market
`

// fakeBroadcaster records data update events for assertions.
type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) BroadcastDataUpdate(event string, data interface{}) {
	f.events = append(f.events, event)
}

func (f *fakeBroadcaster) ClientCount() int { return 0 }

func newTestService(t *testing.T, hub ws.Broadcaster) *PortfolioService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPortfolioService(config.PortfolioConfig{CacheEntries: 16}, hub, logger)
}

func loadSample(t *testing.T, svc *PortfolioService) {
	t.Helper()
	_, err := svc.LoadCSV(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)
}

func TestLoadCSVInstallsPortfolio(t *testing.T) {
	hub := &fakeBroadcaster{}
	svc := newTestService(t, hub)

	info, err := svc.LoadCSV(context.Background(), strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	assert.Equal(t, "sample.csv", info.Source)
	assert.Len(t, info.Fingerprint, 64)
	assert.Equal(t, 4, info.RawRows)
	assert.Equal(t, 4, info.CleanRows)
	assert.Equal(t, []string{ws.EventPortfolioUploaded}, hub.events)
}

func TestLoadCSVRejectsEmptyUpload(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.LoadCSV(context.Background(), strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestAccessorsRequireLoadedPortfolio(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Cleaned(ctx)
	assert.ErrorIs(t, err, ErrNoPortfolio)
	_, err = svc.Accounts(ctx)
	assert.ErrorIs(t, err, ErrNoPortfolio)
	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, ErrNoPortfolio)
	err = svc.UpdateSelection(ctx, holdings.Selection{})
	assert.ErrorIs(t, err, ErrNoPortfolio)
}

func TestAccountsAndSymbols(t *testing.T) {
	svc := newTestService(t, nil)
	loadSample(t, svc)
	ctx := context.Background()

	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brokerage", "Roth IRA"}, accounts)

	symbols, err := svc.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "VTI", "SPAXX"}, symbols)
}

func TestSymbolsFollowAccountSelection(t *testing.T) {
	svc := newTestService(t, nil)
	loadSample(t, svc)
	ctx := context.Background()

	err := svc.UpdateSelection(ctx, holdings.Selection{
		Accounts: []string{"Roth IRA"},
		Symbols:  []string{"VTI", "SPAXX"},
	})
	require.NoError(t, err)

	symbols, err := svc.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"VTI", "SPAXX"}, symbols, "only symbols the selected accounts hold are offered")
}

func TestDefaultSelectionIsEverything(t *testing.T) {
	svc := newTestService(t, nil)
	loadSample(t, svc)

	sel, err := svc.Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Brokerage", "Roth IRA"}, sel.Accounts)
	assert.Equal(t, []string{"AAPL", "VTI", "SPAXX"}, sel.Symbols)

	filtered, err := svc.Filtered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, filtered.Len())
}

func TestUpdateSelectionFiltersAndBroadcasts(t *testing.T) {
	hub := &fakeBroadcaster{}
	svc := newTestService(t, hub)
	loadSample(t, svc)
	ctx := context.Background()

	err := svc.UpdateSelection(ctx, holdings.Selection{
		Accounts: []string{"Roth IRA"},
		Symbols:  []string{"VTI", "SPAXX"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ws.EventPortfolioUploaded, ws.EventSelectionChanged}, hub.events)

	filtered, err := svc.Filtered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Len())

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Len())
}

func TestGrandTotal(t *testing.T) {
	svc := newTestService(t, nil)
	loadSample(t, svc)

	currentValue, _, err := svc.GrandTotal(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 3140.0, currentValue, 0.001)
}

func TestSummaryMemoizedAcrossCalls(t *testing.T) {
	svc := newTestService(t, nil)
	loadSample(t, svc)
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadReplacesSelection(t *testing.T) {
	svc := newTestService(t, nil)
	loadSample(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.UpdateSelection(ctx, holdings.Selection{Accounts: []string{"Brokerage"}, Symbols: []string{"AAPL"}}))

	replacement := `Account Name,Symbol,Quantity,Last Price,Current Value,Total Gain/Loss Dollar,Cost Basis Per Share,Type
Solo 401k,VOO,3,$400.00,"$1,200.00",$150.00,$350.00,ETF
`
	_, err := svc.LoadCSV(ctx, strings.NewReader(replacement), "replacement.csv")
	require.NoError(t, err)

	sel, err := svc.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Solo 401k"}, sel.Accounts)
	assert.Equal(t, []string{"VOO"}, sel.Symbols)
}
