package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
)

// Chart kinds served by the dashboard. The first three break the selection
// down by account, the symbol-* kinds by symbol.
const (
	ChartBar               = "bar"
	ChartPie               = "pie"
	ChartSunburst          = "sunburst"
	ChartSymbolValue       = "symbol-value"
	ChartSymbolGain        = "symbol-gain"
	ChartSymbolGainPercent = "symbol-gain-percent"
	ChartSymbolPie         = "symbol-pie"
)

// Chart is a renderable chart page.
type Chart interface {
	Render(w io.Writer) error
}

// ChartService builds dashboard charts from the active portfolio selection.
type ChartService struct {
	portfolio *PortfolioService
	logger    *slog.Logger
}

// NewChartService creates the chart service.
func NewChartService(portfolio *PortfolioService, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartService{
		portfolio: portfolio,
		logger:    logger.With(slog.String("service", "chart")),
	}
}

// Build returns the chart page for the given kind, computed from the
// active selection.
func (s *ChartService) Build(ctx context.Context, kind string) (Chart, error) {
	switch kind {
	case ChartBar:
		return s.buildBar(ctx)
	case ChartPie:
		return s.buildPie(ctx)
	case ChartSunburst:
		return s.buildSunburst(ctx)
	case ChartSymbolValue:
		return s.buildSymbolBar(ctx, holdings.ColumnCurrentValue, "Current Value", "Value by Symbol")
	case ChartSymbolGain:
		return s.buildSymbolBar(ctx, holdings.ColumnTotalGainDollar, "Total Gain/Loss", "Total Gain/Loss by Symbol")
	case ChartSymbolGainPercent:
		return s.buildSymbolBar(ctx, holdings.ColumnTotalGainPercent, "Total Gain/Loss %", "Total Gain/Loss Percent by Symbol")
	case ChartSymbolPie:
		return s.buildSymbolPie(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrChartUnknown, kind)
	}
}

// buildBar charts current value and total gain/loss per account.
func (s *ChartService) buildBar(ctx context.Context) (Chart, error) {
	summary, err := s.portfolio.Summary(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]string, 0, summary.Len())
	values := make([]opts.BarData, 0, summary.Len())
	gains := make([]opts.BarData, 0, summary.Len())
	for row := 0; row < summary.Len(); row++ {
		account, err := summary.Cell(row, holdings.ColumnAccountName)
		if err != nil {
			return nil, err
		}
		value, err := summary.Cell(row, holdings.ColumnCurrentValue)
		if err != nil {
			return nil, err
		}
		gain, err := summary.Cell(row, holdings.ColumnTotalGainDollar)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account.Text)
		values = append(values, opts.BarData{Value: value.Number})
		gains = append(gains, opts.BarData{Value: gain.Number})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Value by Account"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(accounts).
		AddSeries("Current Value", values).
		AddSeries("Total Gain/Loss", gains)
	return bar, nil
}

// buildPie charts the share of portfolio value held in each account.
func (s *ChartService) buildPie(ctx context.Context) (Chart, error) {
	summary, err := s.portfolio.Summary(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]opts.PieData, 0, summary.Len())
	for row := 0; row < summary.Len(); row++ {
		account, err := summary.Cell(row, holdings.ColumnAccountName)
		if err != nil {
			return nil, err
		}
		value, err := summary.Cell(row, holdings.ColumnCurrentValue)
		if err != nil {
			return nil, err
		}
		items = append(items, opts.PieData{Name: account.Text, Value: value.Number})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Account Composition"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("accounts", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {d}%",
		}))
	return pie, nil
}

// buildSymbolBar charts one numeric column of the symbol summary, one bar
// per symbol.
func (s *ChartService) buildSymbolBar(ctx context.Context, column, seriesName, title string) (Chart, error) {
	summary, err := s.portfolio.SymbolSummary(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, summary.Len())
	values := make([]opts.BarData, 0, summary.Len())
	for row := 0; row < summary.Len(); row++ {
		symbol, err := summary.Cell(row, holdings.ColumnSymbol)
		if err != nil {
			return nil, err
		}
		value, err := summary.Cell(row, column)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol.Text)
		values = append(values, opts.BarData{Value: value.Number})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(symbols).AddSeries(seriesName, values)
	return bar, nil
}

// buildSymbolPie charts the share of portfolio value held in each symbol.
func (s *ChartService) buildSymbolPie(ctx context.Context) (Chart, error) {
	summary, err := s.portfolio.SymbolSummary(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]opts.PieData, 0, summary.Len())
	for row := 0; row < summary.Len(); row++ {
		symbol, err := summary.Cell(row, holdings.ColumnSymbol)
		if err != nil {
			return nil, err
		}
		value, err := summary.Cell(row, holdings.ColumnCurrentValue)
		if err != nil {
			return nil, err
		}
		items = append(items, opts.PieData{Name: symbol.Text, Value: value.Number})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Value of Each Symbol"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("symbols", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {d}%",
		}))
	return pie, nil
}

// buildSunburst charts account to symbol value breakdown.
func (s *ChartService) buildSunburst(ctx context.Context) (Chart, error) {
	filtered, err := s.portfolio.Filtered(ctx)
	if err != nil {
		return nil, err
	}

	// Group symbol values under their account, preserving first-appearance
	// order for both levels.
	order := make([]string, 0)
	children := make(map[string][]*opts.SunBurstData)
	for row := 0; row < filtered.Len(); row++ {
		account, err := filtered.Cell(row, holdings.ColumnAccountName)
		if err != nil {
			return nil, err
		}
		symbol, err := filtered.Cell(row, holdings.ColumnSymbol)
		if err != nil {
			return nil, err
		}
		value, err := filtered.Cell(row, holdings.ColumnCurrentValue)
		if err != nil {
			return nil, err
		}

		if _, seen := children[account.Text]; !seen {
			order = append(order, account.Text)
		}
		children[account.Text] = append(children[account.Text], &opts.SunBurstData{
			Name:  symbol.Text,
			Value: value.Number,
		})
	}

	data := make([]opts.SunBurstData, 0, len(order))
	for _, account := range order {
		data = append(data, opts.SunBurstData{
			Name:     account,
			Children: children[account],
		})
	}

	sunburst := charts.NewSunburst()
	sunburst.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Account and Symbol Breakdown"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	sunburst.AddSeries("portfolio", data)
	return sunburst, nil
}
